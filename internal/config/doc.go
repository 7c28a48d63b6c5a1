// Package config provides configuration structures and utilities for wikigraph.
// It defines the main configuration options for crawling a wiki, persisting
// page content, and generating summary outputs.
package config
