//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for larder using Mage.
//
// Usage:
//
//	mage build       Compile the larder binary to bin/
//	mage test:all    Run all tests
//	mage test:short  Run tests with -short
//	mage test:cover  Run tests with a coverage profile
//	mage lint        Run golangci-lint
//	mage clean       Remove build artifacts
//	mage install     Install larder to GOPATH/bin
//	mage stats       Print Go LOC counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "larder"
	binaryDir  = "bin"
	cmdDir     = "./cmd/larder"
	modulePath = "github.com/mesh-intelligence/larder"
)

// Build compiles the larder binary to bin/, stamping the commit into the
// version string when git is available.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v"}
	if commit, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && commit != "" {
		args = append(args, "-ldflags", "-X "+modulePath+"/internal/cli.commit="+commit)
	}
	args = append(args, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
	return sh.RunV(binGo, args...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
