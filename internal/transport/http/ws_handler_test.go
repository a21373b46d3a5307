package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketStartSubmitFlow(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, RouterOptions{}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?course=intro&test=test-1&userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "start", "payload": map[string]any{"firstName": "Ada"}}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	_, started := readNext(conn, t, "started")
	attemptID, _ := started["attemptId"].(string)
	if attemptID == "" {
		t.Fatalf("expected attempt id, got %+v", started)
	}

	submit := map[string]any{
		"type": "submit",
		"payload": map[string]any{
			"attemptId": attemptID,
			"answers": []map[string]any{
				{"questionId": "q-0", "selectedOptionIds": []string{"q-0-opt-0"}},
				{"questionId": "q-1", "textAnswer": "42"},
			},
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	_, result := readNext(conn, t, "result")
	if result["score"] != float64(2) || result["percent"] != float64(100) {
		t.Fatalf("unexpected result: %+v", result)
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer"}); err != nil {
		t.Fatalf("write unknown: %v", err)
	}
	_, failure := readNext(conn, t, "error")
	if failure["error"] != kindInvalidRequest {
		t.Fatalf("unexpected error payload: %+v", failure)
	}
}

func TestWebSocketDeniedStart(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, RouterOptions{}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?course=intro&test=test-1&userId=stranger"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	_, failure := readNext(conn, t, "error")
	if failure["error"] != kindAccessDenied || failure["reason"] != string(domain.ReasonNotEnrolled) {
		t.Fatalf("unexpected error payload: %+v", failure)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestService() *app.AttemptService {
	catalog := memory.NewCatalog()
	catalog.PutCourse(domain.Course{ID: "course-1", Slug: "intro", Title: "Intro"})
	progress := memory.NewProgressStore()
	progress.Enroll(domain.Enrollment{UserID: "u1", CourseID: "course-1", Status: domain.EnrollmentActive})
	loader := memory.NewStaticTestLoader(map[string]domain.Test{
		"test-1": {
			ID:       "test-1",
			CourseID: "course-1",
			Title:    "Geography",
			Questions: json.RawMessage(`[
				{"type":"single","prompt":"Capital of France?","options":[{"text":"Paris","isCorrect":true},{"text":"Lyon"}]},
				{"type":"open","prompt":"The answer?","correctAnswer":"42"}
			]`),
		},
	})
	return app.NewAttemptService(app.Dependencies{
		Courses:  catalog,
		Tests:    memory.NewTestRepository(loader, time.Minute),
		Progress: progress,
		Attempts: memory.NewAttemptStore(),
		Users:    memory.NewUserDirectory(),
		Activity: app.NewActivityRecorder(memory.NewActivityLog(), time.Second),
	})
}
