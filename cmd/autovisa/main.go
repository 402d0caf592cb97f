// Package main provides the autovisa command line application: a supervised
// bot that watches a visa appointment portal and moves existing bookings to
// earlier dates as slots open up.
package main

func main() {
	Execute()
}
