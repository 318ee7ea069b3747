// Package shared holds helpers used by the tests of several packages. The
// testutil subpackage captures slog output so tests can assert on what a
// component logged.
package shared
