//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Generate runs go generate for the stringer outputs.
func Generate() error {
	return sh.RunV("go", "generate", "./...")
}

// Build compiles the demo binary into bin/.
func Build() error {
	mg.Deps(Generate)
	return sh.RunV("go", "build", "-o", "bin/tessel", "./cmd/tessel")
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs all tests.
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "./...")
}

// Run builds and starts the demo.
func Run() error {
	mg.Deps(Build)
	fmt.Println("Run tessel...")
	return sh.RunV("bin/tessel")
}
