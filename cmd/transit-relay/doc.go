// Command transit-relay runs the TCP relay that splices the bulk data
// connections of two peers who present the same token.
package main
