// Package spec provides a fluent builder for HTTP integration tests.
//
// A Spec describes one request and the expectations its response must meet:
//
//	app.Describe("create user").
//		Post("/users").
//		BearerToken(token).
//		Body(newUser).
//		ExpectStatus(http.StatusCreated).
//		ExpectContentType("application/json; charset=utf-8").
//		ExpectContent(spec.Content(func(u User) {
//			assert.Equal(t, newUser.Name, u.Name)
//		})).
//		Test(t)
//
// Test builds the request, runs the pre-send hooks in registration order,
// dispatches it in memory (or through a live server) and evaluates every
// expectation. Expectation failures are reported with Errorf and do not stop
// the remaining expectations; configuration, hook and transport failures are
// reported with Fatalf. Every failure carries the file:line of the call that
// registered it.
//
// A Spec is single-use and must not be shared between goroutines.
package spec
