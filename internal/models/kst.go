package models

import "time"

// KST is the canonical timezone for every default timestamp in the pipeline.
var KST = time.FixedZone("KST", 9*60*60)

// NowKST returns the current time in KST.
func NowKST() time.Time {
	return time.Now().In(KST)
}
