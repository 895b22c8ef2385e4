// Command pimo is the CLI and daemon entry point for the home-lab
// appliance toolkit: service rotation, sync-window control, the feed
// relay, and the login splash.
package main
