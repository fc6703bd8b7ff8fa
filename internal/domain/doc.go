// Package domain contains the core entities of the photo generation service:
// generation tasks and their lifecycle rules, user accounts with point
// balances, and gallery items. It has no knowledge of storage or transport.
package domain
