// Package domain contains the core business entities, value objects, and
// domain logic of the task lifecycle engine: the Task entity, its validation
// rules, the pre-due hour set, and the pure stage resolver that decides which
// action a task currently owes. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
