// Package rbac implements role-based access control: the closed permission
// vocabulary, effective-permission resolution (role-derived plus direct
// grants), replace-set synchronization of roles and permissions, the access
// policy predicates gating every mutating admin operation, and the Fiber
// middleware enforcing permissions on routes.
package rbac
