// Package components defines ECS components for the particle world.
package components
