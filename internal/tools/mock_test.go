package tools

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/llm"
)

func TestGetWeather(t *testing.T) {
	assert.Contains(t, GetWeather("seoul", "metric"), "18°C")
	assert.Contains(t, GetWeather("SEOUL", ""), "18°C")
	assert.Equal(t, "Busan weather: 20°C, clear.", GetWeather("Busan", "metric"))
	assert.Equal(t, "Seoul weather: 20°C, clear.", GetWeather("Seoul", "imperial"))
}

func TestGetFX(t *testing.T) {
	assert.Contains(t, GetFX("USD/KRW"), "1,375.2")
	assert.Contains(t, GetFX(""), "1,375.2")
	assert.Contains(t, GetFX("EUR/KRW"), "1,470.5")
	assert.Contains(t, GetFX("GBP/JPY"), "n/a")
}

func TestSearchWeb(t *testing.T) {
	assert.Equal(t, "Baseline value: 200 (mock).", SearchWeb("find the baseline"))
	assert.Equal(t, "Current value: 260 (mock).", SearchWeb("current value"))
	assert.Equal(t, "No data.", SearchWeb("weather"))
}

func TestPercentageChange(t *testing.T) {
	v, err := PercentageChange(200, 260)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, v, 1e-9)

	v, err = PercentageChange(200, 100)
	require.NoError(t, err)
	assert.InDelta(t, -50.0, v, 1e-9)

	_, err = PercentageChange(0, 10)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestCalc(t *testing.T) {
	cases := map[string]string{
		"2*(3+4)": "14",
		"137*42":  "5754",
		"7/2":     "3.5",
		"-3+10":   "7",
		"1.5*4":   "6",
	}
	for expr, want := range cases {
		got, err := Calc(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, got, expr)
	}

	for _, bad := range []string{"os.Exit(1)", "x+1", `"a"+"b"`, "2**3", "1/0"} {
		_, err := Calc(bad)
		assert.Error(t, err, bad)
	}
}

func TestNowInTimezone(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := NowInTimezone("Asia/Seoul", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T21:00:00+09:00", got)

	_, err = NowInTimezone("Mars/Olympus", now)
	assert.Error(t, err)
}

func TestCurrentWeatherJSON(t *testing.T) {
	w := CurrentWeatherJSON("", "fahrenheit")
	assert.Equal(t, Weather{Location: "Boston, MA", Temperature: "64°F", Conditions: "Partly cloudy"}, w)
	assert.Equal(t, "18°C", CurrentWeatherJSON("Seoul", "celsius").Temperature)
}

func TestToolNames(t *testing.T) {
	names, err := llm.ToolNames(context.Background(), []tool.BaseTool{
		WeatherTool(), FXTool(), SearchWebTool(), PercentageChangeTool(),
		CalcTool(), NowInTimezoneTool(nil), CurrentWeatherTool(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"get_weather", "get_fx", "search_web_tool", "percentage_change_tool",
		"calc", "now_in_timezone", "getCurrentWeather",
	}, names)
}
