package model

import (
	"reflect"
)

// Template holds acquisition-device header fields attached to an image,
// similar to an imaging-format header. Its fields are flattened into the
// image metadata when the template is assigned; GroupLength is format
// housekeeping and never copied.
type Template struct {
	GroupLength   int        `json:"group_length"`
	Modality      string     `json:"modality"`
	StationName   string     `json:"station_name"`
	StudyDate     string     `json:"study_date"`
	BitsAllocated int        `json:"bits_allocated"`
	PixelSpacing  [2]float64 `json:"pixel_spacing"`
}

// Flatten copies the template fields into the metadata mapping, one entry
// per field, excluding housekeeping fields.
func (t *Template) Flatten(m Metadata) {
	rv := reflect.ValueOf(*t)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.Name == "GroupLength" {
			continue
		}
		switch fv := rv.Field(i).Interface().(type) {
		case string:
			m[field.Name] = Text(fv)
		case int:
			m[field.Name] = Scalar(fv)
		case float64:
			m[field.Name] = Scalar(fv)
		case [2]float64:
			m[field.Name] = Array{fv[0], fv[1]}
		}
	}
}
