// Command erecord builds, validates, and submits timeshare deed recording
// packages to Simplifile as drafts.
package main
