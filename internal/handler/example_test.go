package handler_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/handler"
	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/RoGogDBD/social-pulse/internal/repository"
	"github.com/go-chi/chi/v5"
)

func exampleStorage() *repository.MemStorage {
	change := 2.5
	storage := repository.NewMemStorage()
	storage.Save(models.Snapshot{
		SessionID: "example",
		Tick:      1,
		Timestamp: time.Date(2026, 1, 2, 10, 0, 4, 0, time.UTC),
		Metrics: []models.MetricSnapshot{
			{
				Name: "likes", Value: 1230, Change: &change, ChangeDefined: true,
				History: []models.HistoryPoint{{Time: "Now", Value: 1200}, {Time: "10:00:04", Value: 1230}},
			},
			{
				Name: "comments", Value: 150,
				History: []models.HistoryPoint{{Time: "Now", Value: 150}},
			},
		},
	})
	return storage
}

func withName(req *http.Request, name string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("name", name)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// ExampleHandler_HandleGetMetricValue демонстрирует получение текущего значения метрики.
//
// Показывает, как отправить GET-запрос на /value/{name}.
func ExampleHandler_HandleGetMetricValue() {
	h := handler.NewHandler(exampleStorage(), nil)

	req := httptest.NewRequest("GET", "/value/likes", nil)
	req = withName(req, "likes")

	w := httptest.NewRecorder()
	h.HandleGetMetricValue(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s, Value: %s\n", resp.Status, string(body))
	// Output:
	// Status: 200 OK, Value: 1230
}

// ExampleHandler_HandleChart демонстрирует получение серии точек для линейного графика.
func ExampleHandler_HandleChart() {
	h := handler.NewHandler(exampleStorage(), nil)

	req := httptest.NewRequest("GET", "/api/charts/likes", nil)
	req = withName(req, "likes")

	w := httptest.NewRecorder()
	h.HandleChart(w, req)

	body, _ := io.ReadAll(w.Result().Body)
	fmt.Println(string(body))
	// Output:
	// [{"time":"Now","value":1200},{"time":"10:00:04","value":1230}]
}

// ExampleHandler_HandleEngagement демонстрирует сравнительную серию лайков и комментариев.
//
// Комментарии, для которых нет точки с тем же индексом, равны нулю.
func ExampleHandler_HandleEngagement() {
	h := handler.NewHandler(exampleStorage(), nil)

	w := httptest.NewRecorder()
	h.HandleEngagement(w, httptest.NewRequest("GET", "/api/charts/engagement", nil))

	body, _ := io.ReadAll(w.Result().Body)
	fmt.Println(string(body))
	// Output:
	// [{"time":"Now","likes":1200,"comments":150},{"time":"10:00:04","likes":1230,"comments":0}]
}

// ExampleHandler_HandlePing демонстрирует проверку доступности базы данных.
// Без настроенного архива сервер отвечает ошибкой.
func ExampleHandler_HandlePing() {
	h := handler.NewHandler(repository.NewMemStorage(), nil)

	w := httptest.NewRecorder()
	h.HandlePing(w, httptest.NewRequest("GET", "/ping", nil))

	fmt.Printf("Status: %d\n", w.Code)
	// Output:
	// Status: 500
}

func ExampleFormatThousands() {
	fmt.Println(handler.FormatThousands(1234567))
	// Output:
	// 1,234,567
}
