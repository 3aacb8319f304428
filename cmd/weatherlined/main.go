// Package main is the entry point for the weather hotline daemon. It serves
// the Twilio voice webhooks that answer a call with the current temperature
// for the caller's city.
package main

func main() {
	Execute()
}
