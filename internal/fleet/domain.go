package fleet

// Vehicle is a tracked fleet vehicle. TenantExternalRef is the owning
// tenant's identifier in the upstream telemetry system.
type Vehicle struct {
	ID                string
	Name              string
	TenantExternalRef string
	SiteID            string
	RFID              string
}

// Site is a physical location vehicles operate from. CustomerName is the
// display name of the customer the site belongs to.
type Site struct {
	ID                string
	Name              string
	TenantExternalRef string
	CustomerName      string
}

// Customer is a billing/display grouping of sites.
type Customer struct {
	Ref               string
	Name              string
	TenantExternalRef string
}

// Collections groups the three entity collections a data view consumes.
type Collections struct {
	Vehicles  []Vehicle
	Sites     []Site
	Customers []Customer
}
