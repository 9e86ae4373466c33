// Package quiz implements the quiz run state machine: questions are
// presented one at a time, wrong answers cost a heart, and completing
// the last question yields proportional XP.
package quiz

import (
	"errors"
	"math"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

type State string

const (
	StateAwaitingAnswer State = "awaiting_answer"
	StateAnswered       State = "answered"
	StateComplete       State = "complete"
	StateBlocked        State = "blocked"
)

var (
	ErrNoQuestions   = errors.New("level has no questions")
	ErrInvalidOption = errors.New("selected option out of range")
	ErrNotAwaiting   = errors.New("no question awaiting an answer")
	ErrNotAnswered   = errors.New("current question not answered yet")
	ErrBlocked       = errors.New("out of hearts")
)

// Run is a single pass through a level's questions. It is not safe for
// concurrent use; callers serialize access per player.
type Run struct {
	LevelID   string
	XPReward  int
	Questions []deepsafe.Question

	lives        *Lives
	index        int
	state        State
	selected     int
	lastCorrect  bool
	correctCount int
}

func NewRun(level deepsafe.Level, questions []deepsafe.Question, lives *Lives) (*Run, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Run{
		LevelID:   level.ID,
		XPReward:  level.XPReward,
		Questions: questions,
		lives:     lives,
		state:     StateAwaitingAnswer,
		selected:  -1,
	}, nil
}

// State returns the current state with the out-of-hearts guard applied:
// an empty life counter blocks any run that has not yet completed. The
// guard is evaluated on every observation rather than as a discrete
// transition.
func (r *Run) State() State {
	if r.state != StateComplete && r.lives.Empty() {
		return StateBlocked
	}
	return r.state
}

// Index returns the zero-based index of the current question.
func (r *Run) Index() int { return r.index }

// Current returns the question being presented.
func (r *Run) Current() deepsafe.Question { return r.Questions[r.index] }

func (r *Run) Total() int        { return len(r.Questions) }
func (r *Run) CorrectCount() int { return r.correctCount }
func (r *Run) Lives() *Lives     { return r.lives }

// AnswerResult reports the outcome of a single answer.
type AnswerResult struct {
	Correct      bool
	CorrectIndex int
	Explanation  string
	HeartLost    bool
}

// Answer records the selected option for the current question. A wrong
// answer costs exactly one heart, saturating at zero.
func (r *Run) Answer(option int) (AnswerResult, error) {
	switch r.State() {
	case StateBlocked:
		return AnswerResult{}, ErrBlocked
	case StateAwaitingAnswer:
	default:
		return AnswerResult{}, ErrNotAwaiting
	}

	q := r.Questions[r.index]
	if option < 0 || option >= len(q.Options) {
		return AnswerResult{}, ErrInvalidOption
	}

	r.selected = option
	r.lastCorrect = option == q.CorrectIndex
	r.state = StateAnswered

	res := AnswerResult{
		Correct:      r.lastCorrect,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
	}
	if r.lastCorrect {
		r.correctCount++
	} else {
		res.HeartLost = r.lives.Decrement()
	}
	return res, nil
}

// Continue advances past an answered question. On the last question the
// run completes and Continue reports done=true; otherwise the next
// question is presented with the selection cleared.
func (r *Run) Continue() (done bool, err error) {
	switch r.State() {
	case StateBlocked:
		return false, ErrBlocked
	case StateAnswered:
	default:
		return false, ErrNotAnswered
	}

	if r.index == len(r.Questions)-1 {
		r.state = StateComplete
		return true, nil
	}
	r.index++
	r.selected = -1
	r.state = StateAwaitingAnswer
	return false, nil
}

// EarnedXP computes the proportional reward:
// round(correct/total × xpReward). Partial credit, not all-or-nothing.
func (r *Run) EarnedXP() int {
	return EarnedXP(r.correctCount, len(r.Questions), r.XPReward)
}

// Score is the percentage of correct answers, rounded.
func (r *Run) Score() int {
	return EarnedXP(r.correctCount, len(r.Questions), 100)
}

func EarnedXP(correct, total, reward int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * float64(reward)))
}
