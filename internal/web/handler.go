// Package web is the thin presentation shell. It holds no access
// decision logic: every view render goes through the guard, and menu
// visibility is derived from the same guard verdicts.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/coffeestock/coffeestock/internal/audit"
	"github.com/coffeestock/coffeestock/internal/authz"
	"github.com/coffeestock/coffeestock/internal/guard"
	"github.com/coffeestock/coffeestock/internal/identity"
	"github.com/coffeestock/coffeestock/internal/observability"
	"github.com/coffeestock/coffeestock/internal/session"
	"github.com/coffeestock/coffeestock/internal/view"
)

// Handler wires HTTP endpoints for the application shell.
type Handler struct {
	logger     *slog.Logger
	templates  *view.Engine
	controller *session.Controller
	guard      *guard.Guard
	engine     *authz.Engine
	store      *identity.Store
	trail      *audit.Trail
	metrics    *observability.Metrics
	validator  *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, templates *view.Engine, controller *session.Controller, g *guard.Guard, engine *authz.Engine, store *identity.Store, trail *audit.Trail, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		templates:  templates,
		controller: controller,
		guard:      g,
		engine:     engine,
		store:      store,
		trail:      trail,
		metrics:    metrics,
		validator:  validator.New(),
	}
}

// MountRoutes registers shell routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/switch", h.handleSwitchRequest)
	r.Get("/switch", h.showSwitcher)
	r.Post("/switch/select", h.handleSwitchSelect)
	r.Post("/switch/cancel", h.handleSwitchCancel)
	r.Post("/switch/new", h.handleSwitchNewLogin)
	r.Get("/views/{viewID}", h.showView)
	r.Get("/audit", h.showAudit)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	switch h.controller.State() {
	case session.StateAuthenticated:
		http.Redirect(w, r, "/views/dashboard", http.StatusSeeOther)
	case session.StateSwitching:
		http.Redirect(w, r, "/switch", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if h.controller.State() != session.StateUnauthenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{Errors: map[string]string{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fieldErr := range fieldErrors {
				formErrors[fieldErr.Field()] = "This field is required"
			}
		}
	}

	if len(formErrors) == 0 {
		_, err := h.controller.Login(form.Username, form.Password)
		switch {
		case err == nil:
			h.metrics.ObserveLogin(true)
			http.Redirect(w, r, "/views/dashboard", http.StatusSeeOther)
			return
		case errors.Is(err, session.ErrInvalidTransition):
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		default:
			h.metrics.ObserveLogin(false)
			formErrors["general"] = "Invalid credentials"
		}
	}

	form.Password = ""
	h.renderLogin(w, r, http.StatusUnauthorized, loginPageData{Form: form, Errors: formErrors})
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	w.WriteHeader(status)
	viewData := view.TemplateData{
		Title:       "Sign in",
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.controller.Logout()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleSwitchRequest(w http.ResponseWriter, r *http.Request) {
	err := h.controller.RequestSwitch()
	switch {
	case err == nil:
		http.Redirect(w, r, "/switch", http.StatusSeeOther)
	case errors.Is(err, session.ErrPermissionDenied):
		h.renderDenied(w, r, "Only an administrator can switch the active user.")
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type switcherPageData struct {
	Identities []identity.Identity
}

func (h *Handler) showSwitcher(w http.ResponseWriter, r *http.Request) {
	snap := h.controller.Snapshot()
	if snap.State != session.StateSwitching {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	viewData := view.TemplateData{
		Title:       "Switch user",
		CurrentPath: r.URL.Path,
		Identity:    &snap.Identity,
		Data:        switcherPageData{Identities: h.store.List()},
	}
	if err := h.templates.Render(w, "pages/switch.html", viewData); err != nil {
		h.logger.Error("render switcher", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleSwitchSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	_, err := h.controller.SelectIdentity(r.PostFormValue("username"))
	switch {
	case err == nil:
		h.metrics.ObserveIdentitySwitch()
		http.Redirect(w, r, "/views/dashboard", http.StatusSeeOther)
	case errors.Is(err, identity.ErrNotFound):
		// Unknown or inactive selection keeps the switcher open.
		http.Redirect(w, r, "/switch", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handler) handleSwitchCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.CancelSwitch(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/views/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleSwitchNewLogin(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.RequestNewLogin(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) showView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	snap := h.controller.Snapshot()

	decision := h.guard.Authorize(snap, viewID)
	if !decision.Allowed {
		h.metrics.ObserveDenial(string(decision.Reason))
		switch decision.Reason {
		case guard.ReasonNotAuthenticated:
			// An open switcher is still a live session; send it back
			// there instead of the login screen.
			if snap.State == session.StateSwitching {
				http.Redirect(w, r, "/switch", http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		case guard.ReasonUnknownView:
			http.NotFound(w, r)
		default:
			if h.trail != nil {
				h.trail.Record(audit.KindViewDenied, snap.Identity.Username, viewID)
			}
			h.renderDenied(w, r, "You don't have permission to access this screen.")
		}
		return
	}

	descriptor, _ := h.guard.Lookup(viewID)
	viewData := view.TemplateData{
		Title:       descriptor.Title,
		CurrentPath: r.URL.Path,
		Identity:    &snap.Identity,
		Menu:        h.menu(snap, viewID),
	}
	if err := h.templates.Render(w, "pages/view.html", viewData); err != nil {
		h.logger.Error("render view", slog.String("view", viewID), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) showAudit(w http.ResponseWriter, r *http.Request) {
	snap := h.controller.Snapshot()
	if !snap.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if !h.engine.HasPermission(snap.Identity.Role, authz.PermUsersView) {
		h.metrics.ObserveDenial(string(guard.ReasonInsufficientPermission))
		h.renderDenied(w, r, "You don't have permission to view the audit trail.")
		return
	}
	var events []audit.Event
	if h.trail != nil {
		events = h.trail.Recent(100)
	}
	viewData := view.TemplateData{
		Title:       "Audit trail",
		CurrentPath: r.URL.Path,
		Identity:    &snap.Identity,
		Menu:        h.menu(snap, ""),
		Data:        events,
	}
	if err := h.templates.Render(w, "pages/audit.html", viewData); err != nil {
		h.logger.Error("render audit", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderDenied(w http.ResponseWriter, r *http.Request, message string) {
	snap := h.controller.Snapshot()
	w.WriteHeader(http.StatusForbidden)
	viewData := view.TemplateData{
		Title:       "Access Denied",
		CurrentPath: r.URL.Path,
		Data:        message,
	}
	if snap.Authenticated() {
		viewData.Identity = &snap.Identity
		viewData.Menu = h.menu(snap, "")
	}
	if err := h.templates.Render(w, "pages/denied.html", viewData); err != nil {
		h.logger.Error("render denied", slog.Any("error", err))
	}
}

// menu lists the views the active identity may reach. Filtering runs
// through the same Authorize call that gates rendering, so the menu can
// never show more than the guard allows.
func (h *Handler) menu(snap session.Snapshot, activeViewID string) []view.MenuEntry {
	var entries []view.MenuEntry
	for _, v := range h.guard.Views() {
		if !h.guard.Authorize(snap, v.ID).Allowed {
			continue
		}
		entries = append(entries, view.MenuEntry{
			ViewID: v.ID,
			Title:  v.Title,
			Active: v.ID == activeViewID,
		})
	}
	return entries
}
