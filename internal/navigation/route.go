package navigation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RouteKind names the top-level pages.
type RouteKind int

const (
	RouteHome RouteKind = iota
	RouteLesson
	RoutePrintView
)

// Route is a parsed application path.
type Route struct {
	Kind    RouteKind
	Address Address
}

// ParseRoute parses one of
//
//	/
//	/print-view
//	/lesson/:id
//	/lesson/:id/:subLessonId
//	/lesson/:id/activity/:activityId
//	/lesson/:id/:subLessonId/activity/:activityId
func ParseRoute(path string) (Route, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return Route{Kind: RouteHome}, nil
	}
	if trimmed == "print-view" {
		return Route{Kind: RoutePrintView}, nil
	}

	parts := strings.Split(trimmed, "/")
	if parts[0] != "lesson" || len(parts) < 2 || len(parts) > 5 {
		return Route{}, fmt.Errorf("unknown route %q", path)
	}
	for i, p := range parts {
		u, err := url.PathUnescape(p)
		if err != nil || u == "" {
			return Route{}, fmt.Errorf("bad route segment %q in %q", p, path)
		}
		parts[i] = u
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return Route{}, fmt.Errorf("bad lesson id %q in %q", parts[1], path)
	}

	addr := Address{LessonID: id}
	rest := parts[2:]
	switch {
	case len(rest) == 0:
	case len(rest) == 1:
		addr.SubLessonID = rest[0]
	case len(rest) == 2 && rest[0] == "activity":
		addr.ActivityID = rest[1]
	case len(rest) == 3 && rest[1] == "activity":
		addr.SubLessonID = rest[0]
		addr.ActivityID = rest[2]
	default:
		return Route{}, fmt.Errorf("unknown route %q", path)
	}
	return Route{Kind: RouteLesson, Address: addr}, nil
}

// Path renders the route back to its canonical path.
func (r Route) Path() string {
	switch r.Kind {
	case RoutePrintView:
		return "/print-view"
	case RouteLesson:
		return r.Address.Path()
	}
	return "/"
}

// Path renders the lesson page address.
func (a Address) Path() string {
	var b strings.Builder
	fmt.Fprintf(&b, "/lesson/%d", a.LessonID)
	if a.SubLessonID != "" {
		b.WriteString("/" + url.PathEscape(a.SubLessonID))
	}
	if a.ActivityID != "" {
		b.WriteString("/activity/" + url.PathEscape(a.ActivityID))
	}
	return b.String()
}
