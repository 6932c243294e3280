package tracker

import iface "CamFaceTrack/interface"

// SelectCandidate picks the highest-scoring candidate (first wins on a
// tie) and normalizes it into frame-center coordinates: the origin is
// the middle of the frame, positive x right, positive y down. An empty
// candidate list yields the zero DetectionResult.
func SelectCandidate(candidates []iface.Candidate, frameWidth, frameHeight int) iface.DetectionResult {
	var result iface.DetectionResult
	if len(candidates) == 0 {
		return result
	}
	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.Score > best.Score {
			best = cand
		}
	}
	result.X = best.X
	result.Y = best.Y
	result.Width = best.Width
	result.Height = best.Height
	result.Score = best.Score
	result.CenterX = (best.Width/2 + best.X) - frameWidth/2
	result.CenterY = (best.Height/2 + best.Y) - frameHeight/2
	return result
}
