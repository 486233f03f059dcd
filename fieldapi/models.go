package fieldapi

// Job list filters accepted by JobsService.List.
const (
	ListAllComplete     = "all"
	ListAdminIncomplete = "admin_incomplete"
)

// Roles carried by User.Role.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type User struct {
	ID       int     `json:"id"`
	Role     string  `json:"role"`
	LegacyID *string `json:"legacyId"`
	UID      string  `json:"uid"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	IsActive bool    `json:"isActive"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	Registered   bool   `json:"registered"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	User         User   `json:"user"`
}

type Employee struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	LegacyID  string `json:"legacyId"`
}

// Item is the shape shared by vehicles, equipment and subcontractors.
type Item struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LegacyID string `json:"legacyId"`
}

type (
	Vehicle       = Item
	Equipment     = Item
	Subcontractor = Item
)

type EmployeeJob struct {
	GroupID     string `json:"groupId"`
	JobID       int    `json:"jobId"`
	EmployeeID  int    `json:"employeeId"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
}

type SubcontractorJob struct {
	JobID           int     `json:"jobId"`
	SubcontractorID int     `json:"subContractorId"`
	HoursPerMan     float64 `json:"hoursPerMan"`
	NumberOfMen     int     `json:"numberOfMen"`
	Description     *string `json:"description"`
}

type EquipmentJob struct {
	ID          int     `json:"id"`
	JobID       int     `json:"jobId"`
	EquipmentID int     `json:"equipmentId"`
	Hours       float64 `json:"hours"`
}

type DriverVehicleJob struct {
	ID        *int `json:"id,omitempty"`
	JobID     int  `json:"jobId"`
	DriverID  int  `json:"driverId"`
	VehicleID int  `json:"vehicleId"`
}

type PartJob struct {
	ID          int    `json:"id"`
	JobID       int    `json:"jobId"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	PartNumber  string `json:"partNumber"`
}

// Job is both an admin-predefined work order and a completed submission.
// CreatedFromJobID links a submission to the predefined job it closed.
type Job struct {
	ID               *int               `json:"id,omitempty"`
	CreatedFromJobID *int               `json:"createdFromJobId,omitempty"`
	AdminCreatedByID *int               `json:"adminCreatedById,omitempty"`
	CreatedAt        string             `json:"createdAt,omitempty"`
	Customer         string             `json:"customer"`
	JobNumber        string             `json:"jobNumber"`
	Location         string             `json:"location,omitempty"`
	IsEdit           bool               `json:"isEdit"`
	Description      string             `json:"description,omitempty"`
	CreatedByID      *int               `json:"createdById"`
	Date             string             `json:"date"`
	Links            []string           `json:"links"`
	Employees        []EmployeeJob      `json:"employees"`
	Subcontractors   []SubcontractorJob `json:"subcontractors"`
	Equipment        []EquipmentJob     `json:"equipment"`
	Drivers          []DriverVehicleJob `json:"drivers"`
	Parts            []PartJob          `json:"parts"`
}

type PersonRef struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type NamedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ExistingEmployeeJob struct {
	ID          int       `json:"id"`
	GroupID     string    `json:"groupId"`
	JobID       int       `json:"jobId"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Description string    `json:"description"`
	Employee    PersonRef `json:"employee"`
}

type ExistingEquipmentJob struct {
	ID        int      `json:"id"`
	JobID     int      `json:"jobId"`
	Equipment NamedRef `json:"equipment"`
	Hours     float64  `json:"hours"`
}

type ExistingSubcontractorJob struct {
	ID            int      `json:"id"`
	JobID         int      `json:"jobId"`
	Subcontractor NamedRef `json:"subcontractor"`
	HoursPerMan   float64  `json:"hoursPerMan"`
	NumberOfMen   int      `json:"numberOfMen"`
	Description   *string  `json:"description"`
}

type ExistingDriverVehicleJob struct {
	ID      int       `json:"id"`
	JobID   int       `json:"jobId"`
	Driver  PersonRef `json:"driver"`
	Vehicle NamedRef  `json:"vehicle"`
}

type ExistingPartJob struct {
	ID          int    `json:"id"`
	JobID       int    `json:"jobId"`
	PartID      int    `json:"partId"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	PartNumber  string `json:"partNumber"`
}

// ExistingJob is a job as listed for administrators, with related records
// expanded.
type ExistingJob struct {
	ID               int                        `json:"id"`
	CreatedFromJobID *int                       `json:"createdFromJobId,omitempty"`
	AdminCreatedByID *int                       `json:"adminCreatedById,omitempty"`
	CreatedAt        string                     `json:"createdAt"`
	Customer         string                     `json:"customer"`
	JobNumber        string                     `json:"jobNumber"`
	Location         string                     `json:"location"`
	IsEdit           bool                       `json:"isEdit"`
	Description      string                     `json:"description"`
	CreatedByID      int                        `json:"createdById"`
	Date             string                     `json:"date"`
	Links            []string                   `json:"links"`
	Employees        []ExistingEmployeeJob      `json:"employees"`
	Subcontractors   []ExistingSubcontractorJob `json:"subcontractors"`
	Equipment        []ExistingEquipmentJob     `json:"equipment"`
	Drivers          []ExistingDriverVehicleJob `json:"drivers"`
	Parts            []ExistingPartJob          `json:"parts"`
}
