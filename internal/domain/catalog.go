package domain

import "time"

// ServiceCatalogItem is a requestable service type that tickets may reference.
// AutoAssignToDepartment, when set, drives technician auto-assignment.
type ServiceCatalogItem struct {
	ID                       string
	Name                     string
	Description              string
	Category                 TicketCategory
	RequiredFields           string
	IsActive                 bool
	EstimatedResolutionHours *int
	AutoAssignToDepartment   *Department
	CreatedAt                time.Time
}
