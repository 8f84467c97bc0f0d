// Package router is the client's navigation table and its auth gate.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// Route names.
const (
	Home          = "Home"
	About         = "About"
	Login         = "Login"
	Register      = "Register"
	Groups        = "Groups"
	GroupDetails  = "GroupDetails"
	GroupStats    = "GroupStats"
	Settings      = "Settings"
	CategoryStats = "CategoryStats"
)

// ErrRouteNotFound is returned for paths that match no route.
var ErrRouteNotFound = errors.New("route not found")

// Route is one entry of the navigation table.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	// Props marks routes whose path parameters are passed to the view.
	Props bool
}

// Routes is the navigation table in match order.
var Routes = []Route{
	{Name: Home, Path: "/"},
	{Name: About, Path: "/about"},
	{Name: Login, Path: "/login"},
	{Name: Register, Path: "/register"},
	{Name: Groups, Path: "/groups", RequiresAuth: true},
	{Name: GroupDetails, Path: "/groups/{id}", RequiresAuth: true},
	{Name: GroupStats, Path: "/groups/{id}/stats", RequiresAuth: true},
	{Name: Settings, Path: "/settings", RequiresAuth: true},
	{Name: CategoryStats, Path: "/groups/{id}/categories/{categoryId}", RequiresAuth: true, Props: true},
}

// Match is a resolved location.
type Match struct {
	Route    Route
	Params   map[string]string
	Query    url.Values
	FullPath string
}

// Router resolves paths against the navigation table.
type Router struct {
	mux    *mux.Router
	routes map[string]Route
}

// New creates a Router over Routes.
func New() *Router {
	r := &Router{
		mux:    mux.NewRouter(),
		routes: make(map[string]Route, len(Routes)),
	}
	for _, route := range Routes {
		r.mux.Path(route.Path).Name(route.Name)
		r.routes[route.Name] = route
	}
	return r
}

// Resolve matches fullPath, which may carry a query string.
func (r *Router) Resolve(fullPath string) (*Match, error) {
	u, err := url.Parse(fullPath)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	req := &http.Request{Method: http.MethodGet, URL: u}
	var rm mux.RouteMatch
	if !r.mux.Match(req, &rm) || rm.Route == nil {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, u.Path)
	}

	return &Match{
		Route:    r.routes[rm.Route.GetName()],
		Params:   rm.Vars,
		Query:    u.Query(),
		FullPath: fullPath,
	}, nil
}

// URL builds the path of a named route.
func (r *Router) URL(name string, params map[string]string, query url.Values) (string, error) {
	route := r.mux.Get(name)
	if route == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, k, v)
	}
	u, err := route.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("build %s: %w", name, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// Session is the auth state the guard reads.
type Session interface {
	Loaded() bool
	Authenticated() bool
	FetchCurrentUser(ctx context.Context)
}

// Decision is the outcome of a navigation.
type Decision struct {
	Match *Match
	// Redirect is set when navigation must go elsewhere instead.
	Redirect string
}

// Guard gates routes that require a signed-in user.
type Guard struct {
	router  *Router
	session Session
}

// NewGuard creates a Guard.
func NewGuard(router *Router, session Session) *Guard {
	return &Guard{router: router, session: session}
}

// BeforeEach runs before every navigation to fullPath. Auth is loaded on the
// first navigation, even to an unknown path. Protected routes without a user
// redirect to Login with the original path in the redirect query parameter.
func (g *Guard) BeforeEach(ctx context.Context, fullPath string) (*Decision, error) {
	if !g.session.Loaded() {
		g.session.FetchCurrentUser(ctx)
	}

	match, err := g.router.Resolve(fullPath)
	if err != nil {
		return nil, err
	}

	if match.Route.RequiresAuth && !g.session.Authenticated() {
		redirect, err := g.router.URL(Login, nil, url.Values{"redirect": {fullPath}})
		if err != nil {
			return nil, err
		}
		return &Decision{Match: match, Redirect: redirect}, nil
	}

	return &Decision{Match: match}, nil
}
