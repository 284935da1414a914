package http

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const forecastDays = 5

var summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

type forecast struct {
	Date         string `json:"date"`
	TemperatureC int    `json:"temperatureC"`
	TemperatureF int    `json:"temperatureF"`
	Summary      string `json:"summary"`
}

func fahrenheit(c int) int {
	return 32 + int(float64(c)/0.5556)
}

// makeForecast returns one entry per day starting the day after today.
func makeForecast(today time.Time) []forecast {
	out := make([]forecast, 0, forecastDays)
	for i := 1; i <= forecastDays; i++ {
		c := rand.IntN(75) - 20 // -20..54
		out = append(out, forecast{
			Date:         today.AddDate(0, 0, i).Format(time.DateOnly),
			TemperatureC: c,
			TemperatureF: fahrenheit(c),
			Summary:      summaries[rand.IntN(len(summaries))],
		})
	}
	return out
}

func (s *HTTPServer) weather(c *gin.Context) {
	c.JSON(http.StatusOK, makeForecast(s.now()))
}
