package assistantService

import (
	"strings"
	"sync"

	"VistaVoice/internal/api/assistant"
	"VistaVoice/pkg/navstack"
	"VistaVoice/pkg/nlp"
)

type route struct {
	ID       string
	Label    string
	Path     string
	Keywords []string
}

// The marketplace pages a voice command can land on.
var routes = []route{
	{ID: "home", Label: "Home", Path: "/", Keywords: []string{"home", "start", "main"}},
	{ID: "about", Label: "About", Path: "/about", Keywords: []string{"about", "company"}},
	{ID: "partners", Label: "Partners", Path: "/partners", Keywords: []string{"partner", "partners"}},
	{ID: "listings", Label: "Listings", Path: "/listings", Keywords: []string{"listing", "listings", "properties", "homes", "houses"}},
	{ID: "vendors", Label: "Vendors", Path: "/vendors", Keywords: []string{"vendor", "vendors", "services"}},
	{ID: "dashboard", Label: "Dashboard", Path: "/dashboard", Keywords: []string{"dashboard", "overview"}},
	{ID: "signin", Label: "Sign In", Path: "/signin", Keywords: []string{"sign in", "signin", "log in", "login"}},
	{ID: "contact", Label: "Contact", Path: "/contact", Keywords: []string{"contact", "support"}},
}

func homeEntry() navstack.Entry {
	return navstack.Entry{ID: "home", Label: "Home", Route: "/", Kind: "page"}
}

// navigator keeps one seeded navigation stack per assistant session.
type navigator struct {
	mu     sync.Mutex
	stacks map[string]*navstack.Stack
}

func newNavigator() *navigator {
	return &navigator{stacks: make(map[string]*navstack.Stack)}
}

func (n *navigator) stackFor(sessionID string) *navstack.Stack {
	n.mu.Lock()
	defer n.mu.Unlock()

	stack, ok := n.stacks[sessionID]
	if !ok {
		stack = navstack.New(homeEntry())
		n.stacks[sessionID] = stack
	}
	return stack
}

func (n *navigator) forget(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.stacks, sessionID)
}

func matchRoute(lower string) (route, bool) {
	for _, r := range routes {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r, true
			}
		}
	}
	return route{}, false
}

// resolve turns an intent into a page directive, mutating the session's
// navigation stack. The stack never goes below its home seed.
func (n *navigator) resolve(sessionID, text string, intent nlp.Intent) assistant.Directive {
	stack := n.stackFor(sessionID)

	n.mu.Lock()
	defer n.mu.Unlock()

	switch intent {
	case nlp.IntentNavigation:
		r, ok := matchRoute(strings.ToLower(text))
		if !ok {
			return assistant.Directive{Action: "none"}
		}
		stack.Push(navstack.Entry{ID: r.ID, Label: r.Label, Route: r.Path, Kind: "page"})
		return assistant.Directive{Action: "navigate", Route: r.Path, Label: r.Label}

	case nlp.IntentSystemBack:
		entry, ok := stack.Pop()
		if !ok {
			return assistant.Directive{Action: "none"}
		}
		return assistant.Directive{Action: "back", Route: entry.Route, Label: entry.Label}

	case nlp.IntentSystemClose:
		seed := stack.Reset()
		return assistant.Directive{Action: "reset", Route: seed.Route, Label: seed.Label}

	case nlp.IntentSystemStop:
		return assistant.Directive{Action: "stop"}

	default:
		return assistant.Directive{Action: "none"}
	}
}
