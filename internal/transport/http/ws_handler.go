package http

import (
	"encoding/json"
	"log"
	"net/http"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and runs start/submit messages
// for one learner on one test. Messages are handled in order on the read loop.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	courseRef := r.URL.Query().Get("course")
	testID := r.URL.Query().Get("test")
	userID := r.URL.Query().Get("userId")
	if courseRef == "" || testID == "" || userID == "" {
		http.Error(w, "missing course, test, or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		send <- h.handle(r, courseRef, testID, userID, inbound)
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, courseRef, testID, userID string, in inboundMessage) outboundMessage[any] {
	ctx := r.Context()
	switch in.Type {
	case "start":
		profile := domain.UserProfile{}
		if len(in.Payload) > 0 {
			if err := json.Unmarshal(in.Payload, &profile); err != nil {
				return wsError(errorBody{Error: kindInvalidRequest, Message: "invalid start payload"})
			}
		}
		// The connection identity wins over whatever the payload claims.
		profile.UserID = userID
		if err := validate.Struct(profile); err != nil {
			return wsFailure(err)
		}
		result, err := h.service.Start(ctx, app.StartRequest{CourseRef: courseRef, TestID: testID, Profile: profile})
		if err != nil {
			return wsFailure(err)
		}
		return outboundMessage[any]{Type: "started", Payload: result}
	case "submit":
		var payload submitPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			return wsError(errorBody{Error: kindInvalidRequest, Message: "invalid submit payload"})
		}
		if err := validate.Struct(payload); err != nil {
			return wsFailure(err)
		}
		result, err := h.service.Submit(ctx, app.SubmitRequest{
			CourseRef: courseRef,
			TestID:    testID,
			AttemptID: payload.AttemptID,
			UserID:    userID,
			Answers:   payload.answers(),
		})
		if err != nil {
			return wsFailure(err)
		}
		return outboundMessage[any]{Type: "result", Payload: result}
	default:
		return wsError(errorBody{Error: kindInvalidRequest, Message: "unsupported message type"})
	}
}

func wsFailure(err error) outboundMessage[any] {
	_, body := classify(err)
	return wsError(body)
}

func wsError(body errorBody) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: body}
}
