package app

import (
	"context"

	"github.com/FazinHan/lmstudio-webapp/internal/format"
	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/FazinHan/lmstudio-webapp/internal/notify"
	"github.com/FazinHan/lmstudio-webapp/internal/session"
	"github.com/FazinHan/lmstudio-webapp/internal/ui"
	"github.com/FazinHan/lmstudio-webapp/internal/web"
	tea "github.com/charmbracelet/bubbletea"
)

type TUIService interface {
	InitialModel(opts ui.InitialModelOptions) ui.ChatTUIModel
	Run(model ui.ChatTUIModel) (returnModel tea.Model, returnErr error)
}

type LLMService interface {
	NewClient(provider llm.LLMProvider, opts llm.LLMClientOptions) (llm.LLMClient, error)
}

type SessionService interface {
	Open(kind session.Kind, opts session.Options) (session.Store, error)
}

type NotifyService interface {
	LocalIP() string
	Notify(ctx context.Context, opts notify.EmailOptions, accessURL string, ip string) error
}

type WebService interface {
	Serve(ctx context.Context, server *web.Server, addr string, certFile string, keyFile string) error
}

type TextFormatService interface {
	FormatMarkdown(text string) (string, error)
}

type App interface {
	TUI() TUIService
	LLM() LLMService
	Sessions() SessionService
	Notify() NotifyService
	Web() WebService
	Format() TextFormatService
}

type DefaultTUIService struct{}

type DefaultLLMService struct{}

type DefaultSessionService struct{}

type DefaultNotifyService struct{}

type DefaultWebService struct{}

type DefaultTextFormatService struct{}

type DefaultApp struct {
	tui      TUIService
	llm      LLMService
	sessions SessionService
	notify   NotifyService
	web      WebService
	format   TextFormatService
}

func (a *DefaultApp) TUI() TUIService           { return a.tui }
func (a *DefaultApp) LLM() LLMService           { return a.llm }
func (a *DefaultApp) Sessions() SessionService  { return a.sessions }
func (a *DefaultApp) Notify() NotifyService     { return a.notify }
func (a *DefaultApp) Web() WebService           { return a.web }
func (a *DefaultApp) Format() TextFormatService { return a.format }

func (c *DefaultTUIService) InitialModel(opts ui.InitialModelOptions) ui.ChatTUIModel {
	return ui.InitialModel(opts)
}
func (c *DefaultTUIService) Run(model ui.ChatTUIModel) (returnModel tea.Model, returnErr error) {
	return tea.NewProgram(model, tea.WithAltScreen()).Run()
}

func (l *DefaultLLMService) NewClient(provider llm.LLMProvider, opts llm.LLMClientOptions) (llm.LLMClient, error) {
	return llm.NewClient(provider, opts)
}

func (s *DefaultSessionService) Open(kind session.Kind, opts session.Options) (session.Store, error) {
	return session.Open(kind, opts)
}

func (n *DefaultNotifyService) LocalIP() string {
	return notify.LocalIP()
}
func (n *DefaultNotifyService) Notify(ctx context.Context, opts notify.EmailOptions, accessURL string, ip string) error {
	return notify.NewEmailNotifier(opts).Notify(ctx, accessURL, ip)
}

func (w *DefaultWebService) Serve(ctx context.Context, server *web.Server, addr string, certFile string, keyFile string) error {
	return server.ListenAndServeTLS(ctx, addr, certFile, keyFile)
}

func (l *DefaultTextFormatService) FormatMarkdown(text string) (string, error) {
	return format.FormatMarkdown(text)
}

func NewDefaultApp() App {
	return &DefaultApp{
		tui:      &DefaultTUIService{},
		llm:      &DefaultLLMService{},
		sessions: &DefaultSessionService{},
		notify:   &DefaultNotifyService{},
		web:      &DefaultWebService{},
		format:   &DefaultTextFormatService{},
	}
}
