// Package suite loads request specs from YAML files and runs them in order.
//
// A suite file names a base URL, shared headers and variables, and a list of
// cases:
//
//	name: users
//	variables:
//	  user: alice
//	specs:
//	  - name: create
//	    method: POST
//	    path: /users
//	    body: {name: "{{user}}"}
//	    capture:
//	      id: id
//	    expect:
//	      status: 201
//	      json:
//	        name: "{{user}}"
//	  - name: fetch
//	    path: /users/{{id}}
//	    expect:
//	      status: 200
//
// Strings may reference variables, earlier captures, environment variables
// ({{$HOME}}) and the functions uuid(), timestamp(), randomString(n) and
// base64(s).
package suite
