// Package lib groups supporting libraries that do not belong to a single
// layer: background jobs and email delivery.
package lib
