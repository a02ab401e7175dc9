// Command legalupdates serves the legal updates site and admin panel and
// provides maintenance commands for migrations, seeding and export.
package main

func main() {
	Execute()
}
