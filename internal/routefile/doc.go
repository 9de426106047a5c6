// Package routefile loads declarative route definitions from YAML files and
// compiles them into wire routes.
//
// A route file names its target server and lists route specs, each selecting
// exactly one handler: a reverse proxy upstream, a static response, or a
// redirect. The compiled routes feed the manager's declarative sync at
// startup, so a deployment can describe its full route sequence in one file
// and converge the remote store to it.
package routefile
