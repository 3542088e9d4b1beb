package analysis

// KeyIndicators holds the six tracked radiological signs. A nil field means
// the model did not report the sign and is read as not detected.
type KeyIndicators struct {
	BirdBeakSign      *bool `json:"bird_beak_sign,omitempty"`
	DilatedEsophagus  *bool `json:"dilated_esophagus,omitempty"`
	AbsentPeristalsis *bool `json:"absent_peristalsis,omitempty"`
	FoodRetention     *bool `json:"food_retention,omitempty"`
	NarrowedLES       *bool `json:"narrowed_les,omitempty"`
	SigmoidEsophagus  *bool `json:"sigmoid_esophagus,omitempty"`
}

// Indicator is one sign in display order.
type Indicator struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Detected bool   `json:"detected"`
}

// List returns the six signs in their fixed display order.
func (k KeyIndicators) List() []Indicator {
	return []Indicator{
		{Key: "bird_beak_sign", Label: "Bird's Beak Sign", Detected: isTrue(k.BirdBeakSign)},
		{Key: "dilated_esophagus", Label: "Dilated Esophagus", Detected: isTrue(k.DilatedEsophagus)},
		{Key: "absent_peristalsis", Label: "Absent Peristalsis", Detected: isTrue(k.AbsentPeristalsis)},
		{Key: "food_retention", Label: "Food Retention", Detected: isTrue(k.FoodRetention)},
		{Key: "narrowed_les", Label: "Narrowed LES", Detected: isTrue(k.NarrowedLES)},
		{Key: "sigmoid_esophagus", Label: "Sigmoid Esophagus", Detected: isTrue(k.SigmoidEsophagus)},
	}
}

func (k KeyIndicators) DetectedCount() int {
	n := 0
	for _, ind := range k.List() {
		if ind.Detected {
			n++
		}
	}
	return n
}

func (k KeyIndicators) clone() KeyIndicators {
	return KeyIndicators{
		BirdBeakSign:      copyBool(k.BirdBeakSign),
		DilatedEsophagus:  copyBool(k.DilatedEsophagus),
		AbsentPeristalsis: copyBool(k.AbsentPeristalsis),
		FoodRetention:     copyBool(k.FoodRetention),
		NarrowedLES:       copyBool(k.NarrowedLES),
		SigmoidEsophagus:  copyBool(k.SigmoidEsophagus),
	}
}

func Bool(v bool) *bool { return &v }

func isTrue(b *bool) bool { return b != nil && *b }

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
