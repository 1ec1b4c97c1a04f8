package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/controller"
	"github.com/Erkezh/studypoint-edu/internal/evaluator"
	"github.com/Erkezh/studypoint-edu/internal/middleware"
	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/repository/memstore"
	"github.com/Erkezh/studypoint-edu/internal/service"
	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "controller-test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	router  *gin.Engine
	store   *memstore.Store
	skill   model.Skill
	learner model.User
	token   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{store: memstore.New()}
	h.learner = h.store.AddUser(model.User{Name: "Dana", Email: "dana@example.com", Role: model.Student})
	h.skill = h.store.AddSkill(model.Skill{Code: "ADD-2", Name: "Addition", IsPublished: true})
	for i := 0; i < 5; i++ {
		h.store.AddQuestion(model.Question{
			SkillID:       h.skill.ID,
			Type:          model.QuestionNumeric,
			Prompt:        "3 + 4 = ?",
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"value": float64(7)},
			Level:         2,
		})
	}

	svc := service.NewPracticeService(service.PracticeDeps{
		Store:     h.store,
		Learners:  h.store,
		Evaluator: evaluator.NewRegistry(),
		Logger:    zaptest.NewLogger(t),
	})
	pc := controller.NewPracticeController(svc)

	r := gin.New()
	r.GET("/api/health", controller.NewHealthController(nil, nil).HealthCheck)
	api := r.Group("/api/practice", middleware.AuthMiddleware(testSecret))
	api.POST("/sessions", pc.StartSession)
	api.GET("/sessions/:id", pc.GetSession)
	api.POST("/sessions/:id/next", pc.NextQuestion)
	api.POST("/sessions/:id/submit", pc.Submit)
	api.POST("/sessions/:id/heartbeat", pc.Heartbeat)
	api.POST("/sessions/:id/finish", pc.Finish)
	api.GET("/sessions/:id/attempts", pc.Attempts)
	api.GET("/skills/:skillId/progress", pc.Progress)
	h.router = r

	token, err := util.GenerateJWT(h.learner.ID, model.Student, testSecret, time.Hour)
	require.NoError(t, err)
	h.token = token
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (h *harness) startSession(t *testing.T) service.SessionView {
	t.Helper()
	w, env := h.do(t, http.MethodPost, "/api/practice/sessions", gin.H{"skillId": h.skill.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var view service.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.CurrentQuestion)
	return view
}

func TestPracticeController_StartAndSubmit(t *testing.T) {
	h := newHarness(t)
	view := h.startSession(t)

	w, env := h.do(t, http.MethodPost, "/api/practice/sessions/"+view.ID+"/submit", gin.H{
		"questionRef":     view.CurrentQuestion.Ref,
		"submittedAnswer": gin.H{"value": 7},
		"timeSpentSec":    4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result service.SubmitResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.IsCorrect)
	assert.Positive(t, result.Delta)
	assert.Equal(t, 1, result.Session.QuestionsAnswered)
	require.NotNil(t, result.NextQuestion)

	w, env = h.do(t, http.MethodGet, "/api/practice/sessions/"+view.ID+"/attempts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var attempts []service.AttemptView
	require.NoError(t, json.Unmarshal(env.Data, &attempts))
	assert.Len(t, attempts, 1)
}

func TestPracticeController_StaleRefIsConflict(t *testing.T) {
	h := newHarness(t)
	view := h.startSession(t)

	w, env := h.do(t, http.MethodPost, "/api/practice/sessions/"+view.ID+"/submit", gin.H{
		"questionRef":     "999999",
		"submittedAnswer": gin.H{"value": 7},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, env.Code)
}

func TestPracticeController_ErrorMapping(t *testing.T) {
	h := newHarness(t)
	view := h.startSession(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown session", http.MethodGet, "/api/practice/sessions/does-not-exist", nil, http.StatusNotFound},
		{"unknown skill", http.MethodPost, "/api/practice/sessions", gin.H{"skillId": 4242}, http.StatusNotFound},
		{"missing skill id", http.MethodPost, "/api/practice/sessions", gin.H{}, http.StatusBadRequest},
		{"missing ref", http.MethodPost, "/api/practice/sessions/" + view.ID + "/submit", gin.H{"submittedAnswer": gin.H{"value": 7}}, http.StatusBadRequest},
		{"malformed answer", http.MethodPost, "/api/practice/sessions/" + view.ID + "/submit", gin.H{"questionRef": view.CurrentQuestion.Ref, "submittedAnswer": gin.H{"value": "seven"}}, http.StatusBadRequest},
		{"bad skill param", http.MethodGet, "/api/practice/skills/abc/progress", nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := h.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestPracticeController_FinishThenSubmit(t *testing.T) {
	h := newHarness(t)
	view := h.startSession(t)

	w, _ := h.do(t, http.MethodPost, "/api/practice/sessions/"+view.ID+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := h.do(t, http.MethodGet, "/api/practice/sessions/"+view.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got service.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Finished)
	assert.Equal(t, model.FinishManual, got.FinishReason)
	assert.Nil(t, got.CurrentQuestion)

	w, _ = h.do(t, http.MethodPost, "/api/practice/sessions/"+view.ID+"/submit", gin.H{
		"questionRef":     view.CurrentQuestion.Ref,
		"submittedAnswer": gin.H{"value": 7},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPracticeController_Progress(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(t, http.MethodGet, "/api/practice/skills/"+strconv.FormatUint(uint64(h.skill.ID), 10)+"/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Code)

	w, _ = h.do(t, http.MethodGet, "/api/practice/skills/4242/progress", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPracticeController_RequiresToken(t *testing.T) {
	h := newHarness(t)
	h.token = ""

	w, env := h.do(t, http.MethodPost, "/api/practice/sessions", gin.H{"skillId": h.skill.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", env.Message)
}

func TestHealthCheck_WithoutBackends(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "memory", body.Components["database"])
	assert.Equal(t, "disabled", body.Components["redis"])
}
