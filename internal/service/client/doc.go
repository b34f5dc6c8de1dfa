// Package client implements the command line tools of the zone controller.
//
// Run pushes a surveillance state with retries until the controller confirms
// it. Status prints the current zone snapshot.
package client
