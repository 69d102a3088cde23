package main

import "scitech"

// optionView is one answer button of the quiz card
type optionView struct {
	Index  int
	Letter string
	Text   string
	Class  string
}

// quizView is what the quiz tab renders
type quizView struct {
	Number      int
	Total       int
	Question    string
	Explanation string
	Options     []optionView
	Answered    bool
	Correct     bool
	IsLast      bool
	Finished    bool
	Score       int
	MaxScore    int
}

var optionLetters = []string{"א", "ב", "ג", "ד", "ה", "ו"}

func newQuizView(quiz *scitech.Quiz) quizView {
	number, total := quiz.Progress()
	view := quizView{
		Number:   number,
		Total:    total,
		Finished: quiz.Finished(),
		Score:    quiz.Score(),
		MaxScore: quiz.MaxScore(),
	}
	if view.Finished {
		return view
	}

	q := quiz.Current()
	view.Question = q.Question
	view.Explanation = q.Explanation
	view.Answered = quiz.Answered()
	view.Correct = quiz.IsCorrect()
	view.IsLast = quiz.IsLast()

	for i, text := range q.Options {
		opt := optionView{Index: i, Text: text}
		if i < len(optionLetters) {
			opt.Letter = optionLetters[i]
		}
		if view.Answered {
			switch {
			case i == q.CorrectIndex:
				opt.Class = "option-correct"
			case i == quiz.State.Selected:
				opt.Class = "option-wrong"
			default:
				opt.Class = "option-dim"
			}
		}
		view.Options = append(view.Options, opt)
	}
	return view
}
