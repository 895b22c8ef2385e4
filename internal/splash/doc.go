// Package splash renders the login greeting: host status gathered
// locally plus weather and music fetched over the network. Remote
// lookups run concurrently under a hard time budget and failures
// drop their line rather than delaying or breaking the login.
package splash
