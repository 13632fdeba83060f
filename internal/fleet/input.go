package fleet

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"fleethub/internal/models"
)

// lorawanDeviceInput is the write-side body. It is the detail shape plus
// the defaults a caller may omit: a missing device id is minted, missing
// enums fall back to the same defaults the mapper uses on reads.
type lorawanDeviceInput struct {
	models.LorawanDeviceDetails
}

func (in *lorawanDeviceInput) toDetails() (models.LorawanDeviceDetails, error) {
	d := in.LorawanDeviceDetails

	if strings.TrimSpace(d.Name) == "" {
		return models.LorawanDeviceDetails{}, errors.New("deviceName is required")
	}
	if strings.TrimSpace(d.ModelID) == "" {
		return models.LorawanDeviceDetails{}, errors.New("modelId is required")
	}
	if strings.TrimSpace(d.DeviceID) == "" {
		d.DeviceID = uuid.NewString()
	}

	if d.ClassType == "" {
		d.ClassType = models.ClassA
	} else if _, err := models.ParseClassType(string(d.ClassType)); err != nil {
		return models.LorawanDeviceDetails{}, err
	}
	if d.Deduplication == "" {
		d.Deduplication = models.DeduplicationNone
	} else if _, err := models.ParseDeduplicationMode(string(d.Deduplication)); err != nil {
		return models.LorawanDeviceDetails{}, err
	}

	return d, nil
}
