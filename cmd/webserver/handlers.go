package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"scitech"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

const resultsPageSize = 20

var lessonTabs = map[string]bool{"learn": true, "demo": true, "quiz": true}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)
	delete(session.Values, keyGrade)
	s.saveSession(w, r, session)

	s.render(w, r, session, "home", map[string]interface{}{
		"Grades": scitech.Grades(),
	})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	grade, err := scitech.GradeByID(chi.URLParam(r, "grade"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	session := s.session(r)
	session.Values[keyGrade] = grade.ID
	s.saveSession(w, r, session)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	topics := s.library.Topics(r.Context(), grade)

	s.render(w, r, session, "topics", map[string]interface{}{
		"Grade":        grade,
		"CurrentGrade": grade,
		"Topics":       scitech.FilterTopics(topics, query),
		"Query":        query,
	})
}

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	grade, topic, ok := s.lookupTopic(w, r)
	if !ok {
		return
	}

	session := s.session(r)
	session.Values[keyGrade] = grade.ID

	tab := r.URL.Query().Get("tab")
	if !lessonTabs[tab] {
		tab = "learn"
	}

	data := map[string]interface{}{
		"Grade":        grade,
		"CurrentGrade": grade,
		"Topic":        topic,
		"Tab":          tab,
		"Share":        scitech.LessonShare(topic, grade),
	}

	content := s.library.Content(r.Context(), grade, topic)
	if content != nil {
		data["Content"] = content
		if tab == "quiz" {
			if quiz, err := loadQuiz(session, grade, topic, content); err == nil {
				data["Quiz"] = newQuizView(quiz)
			}
			if flashes := session.Flashes(); len(flashes) > 0 {
				data["Sound"] = flashes[0]
			}
		}
	}

	s.saveSession(w, r, session)
	s.render(w, r, session, "lesson", data)
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	s.withQuiz(w, r, func(session *sessions.Session, quiz *scitech.Quiz, _ scitech.GradeLevel, _ scitech.Topic) error {
		option, err := strconv.Atoi(r.FormValue("option"))
		if err != nil {
			return fmt.Errorf("%w: %q", scitech.ErrInvalidOption, r.FormValue("option"))
		}

		wasAnswered := quiz.Answered()
		correct, err := quiz.Select(option)
		if err != nil {
			return err
		}
		if !wasAnswered {
			if correct {
				session.AddFlash("correct")
			} else {
				session.AddFlash("wrong")
			}
		}
		return nil
	})
}

func (s *Server) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	s.withQuiz(w, r, func(session *sessions.Session, quiz *scitech.Quiz, grade scitech.GradeLevel, topic scitech.Topic) error {
		finished, score, err := quiz.Next()
		if err != nil {
			return err
		}
		if !finished {
			return nil
		}

		session.Values[keyPoints] = sessionInt(session, keyPoints) + score
		result := &scitech.QuizResult{
			GradeID:    grade.ID,
			TopicID:    topic.ID,
			TopicTitle: topic.Title,
			Score:      score,
			MaxScore:   quiz.MaxScore(),
		}
		if err := s.library.RecordResult(r.Context(), result); err != nil {
			s.log.Warnw("failed to record quiz result", "grade", grade.ID, "topic", topic.ID, "error", err)
		}
		s.log.Infow("quiz finished", "grade", grade.ID, "topic", topic.ID, "score", score, "max_score", quiz.MaxScore())
		return nil
	})
}

func (s *Server) handleQuizReset(w http.ResponseWriter, r *http.Request) {
	s.withQuiz(w, r, func(_ *sessions.Session, quiz *scitech.Quiz, _ scitech.GradeLevel, _ scitech.Topic) error {
		quiz.Reset()
		return nil
	})
}

// withQuiz loads the quiz of the addressed topic, applies step and stores the
// new state. Out-of-order steps (next before answering, answering a finished
// quiz) leave the state alone and just show the quiz again.
func (s *Server) withQuiz(w http.ResponseWriter, r *http.Request, step func(*sessions.Session, *scitech.Quiz, scitech.GradeLevel, scitech.Topic) error) {
	grade, topic, ok := s.lookupTopic(w, r)
	if !ok {
		return
	}
	back := quizURL(grade, topic)

	content := s.library.Content(r.Context(), grade, topic)
	if content == nil {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	session := s.session(r)
	quiz, err := loadQuiz(session, grade, topic, content)
	if err != nil {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	if err := step(session, quiz, grade, topic); err != nil {
		if errors.Is(err, scitech.ErrInvalidOption) {
			http.Error(w, "Invalid answer", http.StatusBadRequest)
			return
		}
		s.log.Debugw("ignored quiz step", "grade", grade.ID, "topic", topic.ID, "error", err)
	}

	session.Values[keyQuiz] = quiz.State
	s.saveSession(w, r, session)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)
	if sessionString(session, keyTheme) == "dark" {
		session.Values[keyTheme] = "light"
	} else {
		session.Values[keyTheme] = "dark"
	}
	s.saveSession(w, r, session)

	http.Redirect(w, r, localPath(r.FormValue("return")), http.StatusSeeOther)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)

	var results []scitech.QuizResult
	if s.results != nil {
		var err error
		results, err = s.results.RecentResults(r.Context(), resultsPageSize)
		if err != nil {
			s.log.Errorw("failed to get quiz results", "error", err)
			http.Error(w, "Failed to get results", http.StatusInternalServerError)
			return
		}
	}

	s.render(w, r, session, "results", map[string]interface{}{
		"Results": results,
	})
}

// --- JSON API ---

func (s *Server) handleAPIGrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scitech.Grades())
}

func (s *Server) handleAPITopics(w http.ResponseWriter, r *http.Request) {
	grade, err := scitech.GradeByID(chi.URLParam(r, "grade"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	topics := scitech.FilterTopics(s.library.Topics(r.Context(), grade), r.URL.Query().Get("q"))
	if topics == nil {
		topics = []scitech.Topic{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"grade":  grade,
		"topics": topics,
	})
}

func (s *Server) handleAPIContent(w http.ResponseWriter, r *http.Request) {
	grade, err := scitech.GradeByID(chi.URLParam(r, "grade"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	topic, ok := s.library.Topic(r.Context(), grade, chi.URLParam(r, "topic"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown topic"})
		return
	}

	content := s.library.Content(r.Context(), grade, topic)
	if content == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no content found"})
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleAPIResults(w http.ResponseWriter, r *http.Request) {
	results := []scitech.QuizResult{}
	if s.results != nil {
		list, err := s.results.RecentResults(r.Context(), resultsPageSize)
		if err != nil {
			s.log.Errorw("failed to get quiz results", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get results"})
			return
		}
		results = append(results, list...)
	}
	writeJSON(w, http.StatusOK, results)
}

// --- helpers ---

func (s *Server) lookupTopic(w http.ResponseWriter, r *http.Request) (scitech.GradeLevel, scitech.Topic, bool) {
	grade, err := scitech.GradeByID(chi.URLParam(r, "grade"))
	if err != nil {
		http.NotFound(w, r)
		return scitech.GradeLevel{}, scitech.Topic{}, false
	}
	topic, ok := s.library.Topic(r.Context(), grade, chi.URLParam(r, "topic"))
	if !ok {
		http.NotFound(w, r)
		return scitech.GradeLevel{}, scitech.Topic{}, false
	}
	return grade, topic, true
}

// loadQuiz resumes the session's quiz when it belongs to this topic, otherwise
// starts a new one
func loadQuiz(session *sessions.Session, grade scitech.GradeLevel, topic scitech.Topic, content *scitech.ContentData) (*scitech.Quiz, error) {
	if state, ok := session.Values[keyQuiz].(scitech.QuizState); ok && state.GradeID == grade.ID && state.TopicID == topic.ID {
		return scitech.ResumeQuiz(content.Quiz, state)
	}

	quiz, err := scitech.NewQuiz(content.Quiz)
	if err != nil {
		return nil, err
	}
	quiz.State.GradeID = grade.ID
	quiz.State.TopicID = topic.ID
	return quiz, nil
}

// localPath returns p when it is a path on this site, otherwise "/".
// Browsers treat a backslash like a slash, so "/\\host" is rejected too.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return "/"
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return p
}

func lessonURL(grade scitech.GradeLevel, topic scitech.Topic) string {
	return fmt.Sprintf("/grades/%s/topics/%s", grade.ID, topic.ID)
}

func quizURL(grade scitech.GradeLevel, topic scitech.Topic) string {
	return lessonURL(grade, topic) + "?tab=quiz"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
