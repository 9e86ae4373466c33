package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

func postJSON(t *testing.T, r http.Handler, token, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	if token != "" {
		req.Header.Set("Authorization", bearerScheme+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startRun(t *testing.T, r http.Handler, token, levelID string) runStateResponse {
	t.Helper()
	w := postJSON(t, r, token, "/api/quiz/start", quizStartRequest{LevelID: levelID})
	if w.Code != http.StatusCreated {
		t.Fatalf("start run: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp runStateResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func levelQuestions(t *testing.T, store *SQLiteStore, levelID string) []deepsafe.Question {
	t.Helper()
	questions, err := store.QuestionsByLevel(context.Background(), levelID)
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	return questions
}

func TestQuizPerfectRun(t *testing.T) {
	r, store := newTestRouter(t)
	profile, token := createPlayer(t, store, "ace@example.com", "ace")
	level := firstLevel(t, store)
	questions := levelQuestions(t, store, level.ID)

	state := startRun(t, r, token, level.ID)
	if state.Total != len(questions) {
		t.Fatalf("expected %d questions, got %d", len(questions), state.Total)
	}
	if state.Question == nil {
		t.Fatal("expected a question in the run state")
	}

	var final quizContinueResponse
	for i, q := range questions {
		w := postJSON(t, r, token, "/api/quiz/answer", quizAnswerRequest{Option: q.CorrectIndex})
		if w.Code != http.StatusOK {
			t.Fatalf("answer %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
		var ans quizAnswerResponse
		json.NewDecoder(w.Body).Decode(&ans)
		if !ans.Correct {
			t.Fatalf("answer %d should be correct", i)
		}

		w = postJSON(t, r, token, "/api/quiz/continue", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("continue %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
		json.NewDecoder(w.Body).Decode(&final)
	}

	if !final.Done {
		t.Fatal("run should be done after the last question")
	}
	if final.Score != 100 {
		t.Errorf("expected score 100, got %d", final.Score)
	}
	if final.EarnedXP != level.XPReward {
		t.Errorf("expected %d xp, got %d", level.XPReward, final.EarnedXP)
	}

	// XP is credited and the completion is recorded.
	updated, err := store.ProfileByID(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if updated.XP != level.XPReward {
		t.Errorf("expected profile xp %d, got %d", level.XPReward, updated.XP)
	}
	completed, _ := store.CompletedLevelIDs(context.Background(), profile.ID)
	if len(completed) != 1 || completed[0] != level.ID {
		t.Errorf("expected completion record for %s, got %v", level.ID, completed)
	}
}

func TestQuizWrongAnswerCostsHeart(t *testing.T) {
	r, store := newTestRouter(t)
	profile, token := createPlayer(t, store, "miss@example.com", "miss")
	level := firstLevel(t, store)
	questions := levelQuestions(t, store, level.ID)

	startRun(t, r, token, level.ID)

	wrong := (questions[0].CorrectIndex + 1) % len(questions[0].Options)
	w := postJSON(t, r, token, "/api/quiz/answer", quizAnswerRequest{Option: wrong})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var ans quizAnswerResponse
	json.NewDecoder(w.Body).Decode(&ans)
	if ans.Correct {
		t.Fatal("answer should be wrong")
	}
	if ans.CorrectIndex != questions[0].CorrectIndex {
		t.Errorf("expected revealed index %d, got %d", questions[0].CorrectIndex, ans.CorrectIndex)
	}
	if ans.Hearts != deepsafe.MaxHearts-1 {
		t.Errorf("expected %d hearts, got %d", deepsafe.MaxHearts-1, ans.Hearts)
	}

	// The decrement is mirrored to the store.
	updated, _ := store.ProfileByID(context.Background(), profile.ID)
	if updated.CurrentHearts != deepsafe.MaxHearts-1 {
		t.Errorf("expected persisted hearts %d, got %d", deepsafe.MaxHearts-1, updated.CurrentHearts)
	}
}

func TestQuizPartialCredit(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := createPlayer(t, store, "partial@example.com", "partial")
	level := firstLevel(t, store)
	questions := levelQuestions(t, store, level.ID)
	if len(questions) < 2 {
		t.Skip("level too small for a partial run")
	}

	startRun(t, r, token, level.ID)

	var final quizContinueResponse
	for i, q := range questions {
		option := q.CorrectIndex
		if i == 0 {
			option = (q.CorrectIndex + 1) % len(q.Options)
		}
		postJSON(t, r, token, "/api/quiz/answer", quizAnswerRequest{Option: option})
		w := postJSON(t, r, token, "/api/quiz/continue", nil)
		json.NewDecoder(w.Body).Decode(&final)
	}

	if !final.Done {
		t.Fatal("run should be done")
	}
	if final.Correct != len(questions)-1 {
		t.Errorf("expected %d correct, got %d", len(questions)-1, final.Correct)
	}
	if final.EarnedXP >= level.XPReward || final.EarnedXP <= 0 {
		t.Errorf("partial run should earn partial xp, got %d of %d", final.EarnedXP, level.XPReward)
	}
}

func TestQuizLockedLevelRejected(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := createPlayer(t, store, "eager@example.com", "eager")

	levels, _ := store.ListLevels(context.Background())
	if len(levels) < 2 {
		t.Skip("need at least two levels")
	}
	locked := levels[1]

	w := postJSON(t, r, token, "/api/quiz/start", quizStartRequest{LevelID: locked.ID})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for locked level, got %d: %s", w.Code, w.Body.String())
	}
}

func TestQuizOutOfHeartsBlocks(t *testing.T) {
	r, store := newTestRouter(t)
	profile, token := createPlayer(t, store, "empty@example.com", "empty")
	level := firstLevel(t, store)

	for i := 0; i < deepsafe.MaxHearts; i++ {
		if _, err := store.DecrementHearts(context.Background(), profile.ID); err != nil {
			t.Fatalf("drain hearts: %v", err)
		}
	}

	w := postJSON(t, r, token, "/api/quiz/start", quizStartRequest{LevelID: level.ID})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with no hearts, got %d: %s", w.Code, w.Body.String())
	}
}

func TestQuizRunsBlockMidway(t *testing.T) {
	r, store := newTestRouter(t)
	profile, token := createPlayer(t, store, "lastheart@example.com", "lastheart")
	level := firstLevel(t, store)
	questions := levelQuestions(t, store, level.ID)

	// One heart left: the first wrong answer empties the counter and the
	// run blocks instead of advancing.
	for i := 0; i < deepsafe.MaxHearts-1; i++ {
		store.DecrementHearts(context.Background(), profile.ID)
	}

	startRun(t, r, token, level.ID)

	wrong := (questions[0].CorrectIndex + 1) % len(questions[0].Options)
	w := postJSON(t, r, token, "/api/quiz/answer", quizAnswerRequest{Option: wrong})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var ans quizAnswerResponse
	json.NewDecoder(w.Body).Decode(&ans)
	if ans.State != "blocked" {
		t.Errorf("expected blocked state, got %q", ans.State)
	}

	w = postJSON(t, r, token, "/api/quiz/continue", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 continuing while blocked, got %d", w.Code)
	}
}

func TestQuizNoRunInProgress(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := createPlayer(t, store, "idle@example.com", "idle")

	req := httptest.NewRequest(http.MethodGet, "/api/quiz/state", nil)
	req.Header.Set("Authorization", bearerScheme+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestQuizRepeatCompletionNoDoubleXP(t *testing.T) {
	r, store := newTestRouter(t)
	profile, token := createPlayer(t, store, "repeat@example.com", "repeat")
	level := firstLevel(t, store)
	questions := levelQuestions(t, store, level.ID)

	runThrough := func() {
		startRun(t, r, token, level.ID)
		for _, q := range questions {
			postJSON(t, r, token, "/api/quiz/answer", quizAnswerRequest{Option: q.CorrectIndex})
			postJSON(t, r, token, "/api/quiz/continue", nil)
		}
	}

	runThrough()
	runThrough()

	updated, _ := store.ProfileByID(context.Background(), profile.ID)
	if updated.XP != level.XPReward {
		t.Errorf("repeat completion must not credit xp twice: got %d, want %d", updated.XP, level.XPReward)
	}
}

func TestQuizSimultaneousAnswers(t *testing.T) {
	r, store := newTestRouter(t)
	profile, token := createPlayer(t, store, "swarm@example.com", "swarm")
	level := firstLevel(t, store)
	questions := levelQuestions(t, store, level.ID)
	startRun(t, r, token, level.ID)

	wrong := 0
	if questions[0].CorrectIndex == 0 {
		wrong = 1
	}

	const workers = 8
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = postJSON(t, r, token, "/api/quiz/answer", quizAnswerRequest{Option: wrong}).Code
		}(i)
	}
	wg.Wait()

	var landed, conflicts int
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			landed++
		case http.StatusConflict:
			conflicts++
		default:
			t.Fatalf("unexpected status %d", c)
		}
	}
	if landed != 1 || conflicts != workers-1 {
		t.Fatalf("expected exactly one answer to land, got %d ok and %d conflicts", landed, conflicts)
	}

	updated, err := store.ProfileByID(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if updated.CurrentHearts != deepsafe.MaxHearts-1 {
		t.Errorf("expected exactly one heart lost, got %d hearts", updated.CurrentHearts)
	}
}
