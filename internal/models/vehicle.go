package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// VehicleType is the kind of vehicle. It serializes as its name.
type VehicleType string

const (
	VehicleTypeTruck   VehicleType = "Truck"
	VehicleTypeVan     VehicleType = "Van"
	VehicleTypeTrailer VehicleType = "Trailer"
)

var vehicleTypes = []VehicleType{VehicleTypeTruck, VehicleTypeVan, VehicleTypeTrailer}

// Valid reports whether t is one of the known vehicle types.
func (t VehicleType) Valid() bool {
	for _, v := range vehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts the name in any case or the ordinal (0=Truck).
// Unknown values are kept verbatim so validation can report them.
func (t *VehicleType) UnmarshalJSON(data []byte) error {
	s, err := enumName(data, len(vehicleTypes), func(i int) string { return string(vehicleTypes[i]) })
	if err != nil {
		return err
	}
	for _, v := range vehicleTypes {
		if strings.EqualFold(s, string(v)) {
			*t = v
			return nil
		}
	}
	*t = VehicleType(s)
	return nil
}

// VehicleStatus is the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "Active"
	VehicleStatusMaintenance VehicleStatus = "Maintenance"
	VehicleStatusRetired     VehicleStatus = "Retired"
)

var vehicleStatuses = []VehicleStatus{VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusRetired}

// Valid reports whether s is one of the known vehicle statuses.
func (s VehicleStatus) Valid() bool {
	for _, v := range vehicleStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts the name in any case or the ordinal (0=Active).
func (s *VehicleStatus) UnmarshalJSON(data []byte) error {
	name, err := enumName(data, len(vehicleStatuses), func(i int) string { return string(vehicleStatuses[i]) })
	if err != nil {
		return err
	}
	for _, v := range vehicleStatuses {
		if strings.EqualFold(name, string(v)) {
			*s = v
			return nil
		}
	}
	*s = VehicleStatus(name)
	return nil
}

func enumName(data []byte, n int, name func(int) string) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	i, err := strconv.Atoi(string(data))
	if err != nil {
		return "", err
	}
	if i < 0 || i >= n {
		return string(data), nil
	}
	return name(i), nil
}

// Vehicle is a fleet vehicle identified by its license plate.
type Vehicle struct {
	ID           string        `json:"id"`
	LicensePlate string        `json:"licensePlate"`
	Type         VehicleType   `json:"type"`
	Status       VehicleStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// VehicleInput is the writable part of a vehicle, used for create and update.
type VehicleInput struct {
	LicensePlate string        `json:"licensePlate" validate:"notblank,max=20"`
	Type         VehicleType   `json:"type" validate:"enum"`
	Status       VehicleStatus `json:"status" validate:"enum"`
}

// NewVehicleInput returns an input carrying the defaults for omitted fields.
func NewVehicleInput() VehicleInput {
	return VehicleInput{Type: VehicleTypeTruck, Status: VehicleStatusActive}
}
