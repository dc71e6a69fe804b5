package features

import (
	"hash/fnv"
	"math"
	"sort"

	"aquaculture-platform/internal/models"
)

// EncodeCategory maps a string to a small numeric surrogate using FNV-1a
// reduced modulo the given range. The hash is deterministic across runs and
// processes, which keeps encoded values stable over time; collisions within
// the range are acceptable for a low-cardinality categorical.
func EncodeCategory(s string, modulo uint32) float64 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return float64(h.Sum32() % modulo)
}

// AddTankContext enriches the frame with static tank metadata and
// deviation-from-optimal columns. A nil metadata record leaves the frame
// unchanged.
func AddTankContext(f *Frame, meta *models.TankMetadata) {
	if meta == nil {
		return
	}

	f.SetConstFloat("tank_capacity", meta.CapacityValue)
	f.SetConstFloat("tank_type_encoded", EncodeCategory(meta.TankType, 1000))
	f.SetConstFloat("building_encoded", EncodeCategory(meta.Location.Building, 100))
	f.SetConstFloat("room_encoded", EncodeCategory(meta.Location.Room, 100))

	// Deviation features for every optimal parameter that names an existing
	// feature column. Sorted for a stable column order.
	params := make([]string, 0, len(meta.OptimalParameters))
	for p := range meta.OptimalParameters {
		params = append(params, p)
	}
	sort.Strings(params)

	for _, param := range params {
		values, ok := f.Float(param)
		if !ok {
			continue
		}
		optimal := meta.OptimalParameters[param]

		deviation := make([]float64, len(values))
		within := make([]float64, len(values))
		for i, v := range values {
			deviation[i] = math.Abs(v - optimal)
			if deviation[i] < optimal*0.1 {
				within[i] = 1
			}
		}

		f.SetFloat(param+"_deviation", deviation)
		f.SetFloat(param+"_within_optimal", within)
	}
}
