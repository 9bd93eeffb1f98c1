// Package mocks provides shared mock implementations of service interfaces
// for tests that span package boundaries. Mocks used by a single test file
// live next to that file instead.
package mocks
