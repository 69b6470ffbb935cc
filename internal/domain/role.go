package domain

// Role type to distinguish between principal roles
type Role string

// Define constants for roles
const (
	RoleClient  Role = "client"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)
