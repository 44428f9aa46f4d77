// Package trackers registers the Excel trackers with the core registry.
// Import this package to ensure all trackers are registered.
package trackers

// Each tracker file uses init() to register its tracker.
