package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/service"
)

func seedGoal(t *testing.T, api *API, userID uint, input service.GoalInput) string {
	t.Helper()
	goal, err := api.goals.Create(userID, input)
	if err != nil {
		t.Fatalf("failed to seed goal: %v", err)
	}
	return goal.ID
}

func seedHydrationGoal(t *testing.T, api *API, userID uint) string {
	t.Helper()
	id := seedGoal(t, api, userID, service.GoalInput{Type: "Hydration", Target: 1000, StartDate: day(1, 0, 0), EndDate: day(20, 0, 0)})
	seedRecord(t, api, userID, service.ActivityInput{Type: "Hydration", Value: 400, Date: day(5, 9, 0)})
	seedRecord(t, api, userID, service.ActivityInput{Type: "Hydration", Value: 400, Date: day(12, 9, 0)})
	seedRecord(t, api, userID, service.ActivityInput{Type: "Exercise", Title: "Run", Value: 300, Date: day(5, 7, 0)})
	return id
}

func TestCreateGoalValidation(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})

	cases := []map[string]any{
		{"type": "Hydration", "target": 0, "start_date": "2024-12-01", "end_date": "2024-12-07"},
		{"type": "Hydration", "target": 100, "start_date": "2024-12-08", "end_date": "2024-12-07"},
		{"type": "Hydration", "target": 100, "start_date": "2024-12-01"},
		{"type": "Walking", "target": 100, "start_date": "2024-12-01", "end_date": "2024-12-07"},
	}
	for i, payload := range cases {
		c, w := newJSONContext(http.MethodPost, "/api/goals", payload, user.ID)
		api.CreateGoal(c)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d: %s", i, w.Code, w.Body.String())
		}
	}

	c, w := newJSONContext(http.MethodPost, "/api/goals", map[string]any{
		"type": "Sleep", "target": 56, "start_date": "2024-12-01", "end_date": "2024-12-07",
	}, user.ID)
	api.CreateGoal(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	goal := decodeBody(t, w)["goal"].(map[string]any)
	if goal["end_date"] != "2024-12-07" || goal["unit"] != "hrs" {
		t.Fatalf("unexpected goal payload %v", goal)
	}
}

func TestListGoalsProgressModes(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})
	seedHydrationGoal(t, api, user.ID)

	c, w := newJSONContext(http.MethodGet, "/api/goals?date=2024-12-08", nil, user.ID)
	api.ListGoals(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["mode"] != "asof" {
		t.Fatalf("expected default mode asof, got %v", body["mode"])
	}
	goals := body["goals"].([]any)
	if len(goals) != 1 {
		t.Fatalf("expected 1 active goal, got %d", len(goals))
	}
	goal := goals[0].(map[string]any)
	if goal["completed"].(float64) != 400 {
		t.Fatalf("expected 400 completed as of Dec 8, got %v", goal["completed"])
	}
	card := goal["card"].(map[string]any)
	if card["target"] != "Target: 1000.0" || card["completed"] != "Completed: 400.0" || card["remaining"] != "Remaining: 600.0" {
		t.Fatalf("unexpected card %v", card)
	}

	c, w = newJSONContext(http.MethodGet, "/api/goals?date=2024-12-08&mode=window", nil, user.ID)
	api.ListGoals(c)
	goal = decodeBody(t, w)["goals"].([]any)[0].(map[string]any)
	if goal["completed"].(float64) != 800 {
		t.Fatalf("expected 800 over the whole window, got %v", goal["completed"])
	}

	c, w = newJSONContext(http.MethodGet, "/api/goals?mode=weekly", nil, user.ID)
	api.ListGoals(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", w.Code)
	}
}

func TestListGoalsOutsideWindow(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})
	seedHydrationGoal(t, api, user.ID)

	c, w := newJSONContext(http.MethodGet, "/api/goals?date=2024-12-25", nil, user.ID)
	api.ListGoals(c)
	if got := len(decodeBody(t, w)["goals"].([]any)); got != 0 {
		t.Fatalf("expected no active goals on Dec 25, got %d", got)
	}

	c, w = newJSONContext(http.MethodGet, "/api/goals?date=2024-12-25&all=1", nil, user.ID)
	api.ListGoals(c)
	goals := decodeBody(t, w)["goals"].([]any)
	if len(goals) != 1 {
		t.Fatalf("expected all goals listed, got %d", len(goals))
	}
	if achieved := goals[0].(map[string]any)["achieved"]; achieved != false {
		t.Fatalf("expected goal not achieved, got %v", achieved)
	}
}

func TestGetGoalIncludesRelatedRecords(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})
	id := seedHydrationGoal(t, api, user.ID)

	// 默认日期为固定时钟的 12 月 10 日
	c, w := newJSONContext(http.MethodGet, "/api/goals/"+id, nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: id}}
	api.GetGoal(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	goal := decodeBody(t, w)["goal"].(map[string]any)
	if goal["completed"].(float64) != 400 {
		t.Fatalf("expected progress as of Dec 10, got %v", goal["completed"])
	}
	records := goal["records"].([]any)
	if len(records) != 2 {
		t.Fatalf("expected 2 hydration records in window, got %d", len(records))
	}
	if records[0].(map[string]any)["value_text"] != "400.0 ml" {
		t.Fatalf("unexpected related record %v", records[0])
	}
}

func TestUpdateAndDeleteGoal(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})
	id := seedHydrationGoal(t, api, user.ID)

	c, w := newJSONContext(http.MethodPut, "/api/goals/"+id, map[string]any{
		"type": "Hydration", "target": 500, "start_date": "2024-12-01", "end_date": "2024-12-31",
	}, user.ID)
	c.Params = gin.Params{{Key: "id", Value: id}}
	api.UpdateGoal(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if target := decodeBody(t, w)["goal"].(map[string]any)["target"]; target.(float64) != 500 {
		t.Fatalf("expected updated target, got %v", target)
	}

	c, w = newJSONContext(http.MethodDelete, "/api/goals/"+id, nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: id}}
	api.DeleteGoal(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", w.Code)
	}

	c, w = newJSONContext(http.MethodGet, "/api/goals/"+id, nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: id}}
	api.GetGoal(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListGoalsIncludesGoalOnItsStartDay(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})
	seedRecord(t, api, user.ID, service.ActivityInput{Type: "Exercise", Title: "Run", Value: 300, Date: day(3, 8, 0)})

	c, w := newJSONContext(http.MethodPost, "/api/goals", map[string]any{
		"type": "Exercise", "target": 1000, "start_date": "2024-12-03T10:00:00Z", "end_date": "2024-12-09",
	}, user.ID)
	api.CreateGoal(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if start := decodeBody(t, w)["goal"].(map[string]any)["start_date"]; start != "2024-12-03" {
		t.Fatalf("unexpected start date %v", start)
	}

	c, w = newJSONContext(http.MethodGet, "/api/goals?date=2024-12-03", nil, user.ID)
	api.ListGoals(c)
	goals := decodeBody(t, w)["goals"].([]any)
	if len(goals) != 1 {
		t.Fatalf("expected goal listed on its start day, got %d", len(goals))
	}
	if completed := goals[0].(map[string]any)["completed"].(float64); completed != 300 {
		t.Fatalf("expected the 08:00 record to count, got %v", completed)
	}
}
