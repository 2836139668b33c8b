// Package shared declares the collaborator interfaces consumed by the checkout
// services: git execution, filesystem access, and user-facing reporting.
package shared
