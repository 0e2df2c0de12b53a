// Package view renders html/template views with layouts and partials.
//
// Views live in a views directory, layouts and partials in their own
// directories, all sharing one file extension (".html" by default):
//
//	views/
//	    error.html
//	    index.html
//	    layouts/main.html
//	    partials/nav.html
//
// A layout receives the view's data plus the rendered view under "body":
//
//	<html><body>{{.body}}</body></html>
//
// Partials are named by their path relative to the partials directory and
// can be used from any view or layout with {{template "nav" .}}.
//
// Parsed templates are cached. During development, Engine.Watch keeps the
// cache fresh by invalidating it on file changes.
package view
