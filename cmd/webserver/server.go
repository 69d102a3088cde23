package main

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"scitech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

const sessionName = "scitech-session"

// session keys
const (
	keyGrade  = "grade"
	keyPoints = "points"
	keyQuiz   = "quiz"
	keyTheme  = "theme"
)

// resultLister reads the quiz history
type resultLister interface {
	RecentResults(ctx context.Context, limit int) ([]scitech.QuizResult, error)
}

type Server struct {
	library   *scitech.Library
	results   resultLister
	store     sessions.Store
	templates map[string]*template.Template
	log       *zap.SugaredLogger
}

// NewServer parses the page templates; results may be nil
func NewServer(library *scitech.Library, results resultLister, store sessions.Store, log *zap.SugaredLogger) (*Server, error) {
	md := goldmark.New()

	funcMap := template.FuncMap{
		"markdown": func(s string) template.HTML {
			var buf bytes.Buffer
			if err := md.Convert([]byte(s), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(buf.String())
		},
		"topicImage": scitech.TopicImageURL,
		"demoImage":  scitech.DemoImageURL,
		"youtubeURL": scitech.YouTubeSearchURL,
		"topicShare": scitech.TopicShare,
		"add": func(a, b int) int {
			return a + b
		},
		"percent": func(a, b int) int {
			if b == 0 {
				return 0
			}
			return a * 100 / b
		},
		"date": func(t time.Time) string {
			return t.Format("02/01/2006 15:04")
		},
		"gradeLabel": func(id string) string {
			grade, err := scitech.GradeByID(id)
			if err != nil {
				return id
			}
			return grade.Label
		},
	}

	templates := make(map[string]*template.Template)
	pages := []string{"home", "topics", "lesson", "results"}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcMap).ParseFS(templatesFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Server{
		library:   library,
		results:   results,
		store:     store,
		templates: templates,
		log:       log.With("service", "WebServer"),
	}, nil
}

// Router returns the HTTP handler of the application
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	staticSubFS, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSubFS))))

	r.Get("/healthz", s.handleHealth)

	r.Get("/", s.handleHome)
	r.Post("/theme", s.handleTheme)
	r.Get("/results", s.handleResults)
	r.Route("/grades/{grade}", func(r chi.Router) {
		r.Get("/", s.handleTopics)
		r.Route("/topics/{topic}", func(r chi.Router) {
			r.Get("/", s.handleLesson)
			r.Post("/quiz/answer", s.handleQuizAnswer)
			r.Post("/quiz/next", s.handleQuizNext)
			r.Post("/quiz/reset", s.handleQuizReset)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/grades", s.handleAPIGrades)
		r.Get("/grades/{grade}/topics", s.handleAPITopics)
		r.Get("/grades/{grade}/topics/{topic}/content", s.handleAPIContent)
		r.Get("/results", s.handleAPIResults)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) session(r *http.Request) *sessions.Session {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// a stale or foreign cookie; start over with the fresh session
		s.log.Debugw("discarding session", "error", err)
	}
	return session
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	if err := session.Save(r, w); err != nil {
		s.log.Warnw("session save failed", "error", err)
	}
}

// render executes page inside base.html with the values every page shows
func (s *Server) render(w http.ResponseWriter, r *http.Request, session *sessions.Session, page string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Points"] = sessionInt(session, keyPoints)
	data["Theme"] = sessionString(session, keyTheme)
	data["SiteShare"] = scitech.SiteShare()
	data["Path"] = r.URL.RequestURI()
	if _, ok := data["CurrentGrade"]; !ok {
		if grade, err := scitech.GradeByID(sessionString(session, keyGrade)); err == nil {
			data["CurrentGrade"] = grade
		}
	}

	var buf bytes.Buffer
	if err := s.templates[page].ExecuteTemplate(&buf, "base.html", data); err != nil {
		s.log.Errorw("template error", "page", page, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func sessionInt(session *sessions.Session, key string) int {
	v, _ := session.Values[key].(int)
	return v
}

func sessionString(session *sessions.Session, key string) string {
	v, _ := session.Values[key].(string)
	return v
}
