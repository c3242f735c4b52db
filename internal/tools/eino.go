package tools

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

type WeatherInput struct {
	City  string `json:"city" jsonschema:"description=City name for example Seoul"`
	Units string `json:"units,omitempty" jsonschema:"description=metric or imperial"`
}

type FXInput struct {
	Pair string `json:"pair" jsonschema:"description=Currency pair such as USD/KRW"`
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"description=Search query"`
}

type PercentageInput struct {
	Start float64 `json:"start" jsonschema:"description=Starting value"`
	End   float64 `json:"end" jsonschema:"description=Ending value"`
}

type CalcInput struct {
	Expr string `json:"expr" jsonschema:"description=Arithmetic expression like 2*(3+4)"`
}

type TimezoneInput struct {
	TZ string `json:"tz" jsonschema:"description=IANA timezone such as Asia/Seoul"`
}

type CurrentWeatherInput struct {
	Location string `json:"location" jsonschema:"description=City and state"`
	Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
}

func WeatherTool() tool.BaseTool {
	t, _ := utils.InferTool("get_weather", "Get the current weather for a city.",
		func(ctx context.Context, in *WeatherInput) (string, error) {
			return GetWeather(in.City, in.Units), nil
		})
	return t
}

func FXTool() tool.BaseTool {
	t, _ := utils.InferTool("get_fx", "Get a mock FX quote for a currency pair.",
		func(ctx context.Context, in *FXInput) (string, error) {
			return GetFX(in.Pair), nil
		})
	return t
}

func SearchWebTool() tool.BaseTool {
	t, _ := utils.InferTool("search_web_tool", "Look up baseline or current mock values.",
		func(ctx context.Context, in *SearchInput) (string, error) {
			return SearchWeb(in.Query), nil
		})
	return t
}

func PercentageChangeTool() tool.BaseTool {
	t, _ := utils.InferTool("percentage_change_tool", "Compute the percentage change from start to end.",
		func(ctx context.Context, in *PercentageInput) (string, error) {
			v, err := PercentageChange(in.Start, in.End)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		})
	return t
}

func CalcTool() tool.BaseTool {
	t, _ := utils.InferTool("calc", "Evaluate a simple arithmetic expression like '2*(3+4)'.",
		func(ctx context.Context, in *CalcInput) (string, error) {
			return Calc(in.Expr)
		})
	return t
}

// NowInTimezoneTool reads the clock through now so tests can pin it.
func NowInTimezoneTool(now func() time.Time) tool.BaseTool {
	if now == nil {
		now = time.Now
	}
	t, _ := utils.InferTool("now_in_timezone", "Return current date/time in the given IANA timezone.",
		func(ctx context.Context, in *TimezoneInput) (string, error) {
			return NowInTimezone(in.TZ, now())
		})
	return t
}

func CurrentWeatherTool() tool.BaseTool {
	t, _ := utils.InferTool("getCurrentWeather", "Get the current weather for a city.",
		func(ctx context.Context, in *CurrentWeatherInput) (*Weather, error) {
			w := CurrentWeatherJSON(in.Location, in.Unit)
			return &w, nil
		})
	return t
}
