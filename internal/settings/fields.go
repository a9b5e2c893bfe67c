package settings

import (
	"strconv"

	"github.com/axidraft/plotdrive/perr"
)

// setField applies one key=value pair from `config set` onto doc,
// dispatching by the document's JSON field names.
func setField(doc *Document, key, value string) error {
	switch key {
	case "orientation":
		doc.Orientation = value
	case "paperWMm":
		return setFloat(&doc.PaperWMm, key, value)
	case "paperHMm":
		return setFloat(&doc.PaperHMm, key, value)
	case "marginLMm":
		return setFloat(&doc.MarginLMm, key, value)
	case "marginRMm":
		return setFloat(&doc.MarginRMm, key, value)
	case "marginTMm":
		return setFloat(&doc.MarginTMm, key, value)
	case "marginBMm":
		return setFloat(&doc.MarginBMm, key, value)
	case "defaultPointSizePt":
		return setFloat(&doc.DefaultPointSizePt, key, value)
	case "defaultFamily":
		doc.DefaultFamily = value
	case "nominalFeedMmS":
		return setFloat(&doc.NominalFeedMmS, key, value)
	case "travelFeedMmS":
		return setFloat(&doc.TravelFeedMmS, key, value)
	case "nominalAccel":
		return setFloat(&doc.NominalAccel, key, value)
	case "maxCorneringDistanceMm":
		return setFloat(&doc.MaxCorneringDistanceMm, key, value)
	case "minSegmentMm":
		return setFloat(&doc.MinSegmentMm, key, value)
	case "kinematicModel":
		doc.KinematicModel = value
	case "stepsPerMmX":
		return setFloat(&doc.StepsPerMmX, key, value)
	case "stepsPerMmY":
		return setFloat(&doc.StepsPerMmY, key, value)
	case "servoUpPosition":
		return setInt32(&doc.ServoUpPosition, key, value)
	case "servoDownPosition":
		return setInt32(&doc.ServoDownPosition, key, value)
	case "servoRate":
		return setInt32(&doc.ServoRate, key, value)
	case "servoDelayMs":
		return setInt32(&doc.ServoDelayMs, key, value)
	case "servoTimeoutMs":
		return setInt32(&doc.ServoTimeoutMs, key, value)
	case "defaultDeviceAlias":
		doc.DefaultDeviceAlias = value
	default:
		return perr.New(perr.Argument, "unknown config key %q", key)
	}
	return nil
}

func setFloat(field *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return perr.Wrap(perr.Argument, err, "parsing %s=%q as a number", key, value)
	}
	*field = v
	return nil
}

func setInt32(field *int32, key, value string) error {
	v, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return perr.Wrap(perr.Argument, err, "parsing %s=%q as an integer", key, value)
	}
	*field = int32(v)
	return nil
}
