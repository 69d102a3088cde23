package scitech

import (
	"encoding/gob"
	"errors"
	"fmt"
)

// PointsPerCorrect is added to the score for every correct answer
const PointsPerCorrect = 10

var (
	ErrEmptyQuiz     = errors.New("quiz has no questions")
	ErrInvalidOption = errors.New("invalid option")
	ErrNotAnswered   = errors.New("current question not answered")
	ErrQuizFinished  = errors.New("quiz already finished")
)

// QuizState is the progress through one quiz. It holds no question data so it
// stays small enough to live in a cookie session.
type QuizState struct {
	GradeID  string
	TopicID  string
	Total    int
	Index    int
	Selected int // -1 until the current question is answered
	Score    int
	Finished bool
}

func init() {
	gob.Register(QuizState{})
}

// Quiz walks a fixed list of questions once, front to back
type Quiz struct {
	questions []QuizQuestion
	State     QuizState
}

// NewQuiz starts a quiz at the first question
func NewQuiz(questions []QuizQuestion) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	return &Quiz{
		questions: questions,
		State: QuizState{
			Total:    len(questions),
			Selected: -1,
		},
	}, nil
}

// ResumeQuiz continues from a saved state. A state that does not fit the
// questions (e.g. the content was regenerated) starts over.
func ResumeQuiz(questions []QuizQuestion, state QuizState) (*Quiz, error) {
	q, err := NewQuiz(questions)
	if err != nil {
		return nil, err
	}
	q.State.GradeID = state.GradeID
	q.State.TopicID = state.TopicID

	if state.Total != len(questions) || state.Index < 0 || state.Index >= len(questions) ||
		state.Selected < -1 || state.Selected >= len(questions[state.Index].Options) {
		return q, nil
	}
	q.State = state
	return q, nil
}

// Current returns the question being shown
func (q *Quiz) Current() QuizQuestion {
	return q.questions[q.State.Index]
}

// Answered reports whether the current question has been answered
func (q *Quiz) Answered() bool {
	return q.State.Selected >= 0
}

// IsCorrect reports whether the current answer is the correct one
func (q *Quiz) IsCorrect() bool {
	return q.Answered() && q.State.Selected == q.Current().CorrectIndex
}

// Select answers the current question. The first answer is final: later calls
// return the locked result without changing the score.
func (q *Quiz) Select(option int) (bool, error) {
	if q.State.Finished {
		return false, ErrQuizFinished
	}
	if q.Answered() {
		return q.IsCorrect(), nil
	}
	if option < 0 || option >= len(q.Current().Options) {
		return false, fmt.Errorf("%w: %d", ErrInvalidOption, option)
	}

	q.State.Selected = option
	if q.IsCorrect() {
		q.State.Score += PointsPerCorrect
	}
	return q.IsCorrect(), nil
}

// Next moves to the following question, or finishes the quiz after the last
// one. finished is true exactly once, together with the final score.
func (q *Quiz) Next() (finished bool, score int, err error) {
	if q.State.Finished {
		return false, q.State.Score, ErrQuizFinished
	}
	if !q.Answered() {
		return false, q.State.Score, ErrNotAnswered
	}

	if q.State.Index < len(q.questions)-1 {
		q.State.Index++
		q.State.Selected = -1
		return false, q.State.Score, nil
	}

	q.State.Finished = true
	return true, q.State.Score, nil
}

// Reset starts the same quiz again
func (q *Quiz) Reset() {
	q.State.Index = 0
	q.State.Selected = -1
	q.State.Score = 0
	q.State.Finished = false
}

// Progress returns the 1-based number of the current question and the total
func (q *Quiz) Progress() (int, int) {
	return q.State.Index + 1, len(q.questions)
}

// IsLast reports whether the current question is the last one
func (q *Quiz) IsLast() bool {
	return q.State.Index == len(q.questions)-1
}

// MaxScore is the score of a quiz answered without mistakes
func (q *Quiz) MaxScore() int {
	return len(q.questions) * PointsPerCorrect
}

// Score returns the points collected so far
func (q *Quiz) Score() int {
	return q.State.Score
}

// Finished reports whether the last question has been passed
func (q *Quiz) Finished() bool {
	return q.State.Finished
}
