// Package notifications delivers batch lifecycle events over ntfy.
package notifications
