package envit5

import (
	"math"
	"sort"
)

// beam is one decoding hypothesis: the token ids emitted so far (starting
// with the decoder start token) and the cumulative log-probability.
type beam struct {
	tokens []int64
	score  float64
}

// candidate is a next-token proposal for a beam.
type candidate struct {
	id    int64
	score float64
}

// topKLogits converts one row of raw logits to log-probabilities and returns
// the k best token ids, highest first. Ties resolve to the lower id.
func topKLogits(logits []float32, k int) []candidate {
	if k <= 0 || len(logits) == 0 {
		return nil
	}
	if k > len(logits) {
		k = len(logits)
	}

	maxLogit := float64(logits[0])
	for _, v := range logits[1:] {
		if f := float64(v); f > maxLogit {
			maxLogit = f
		}
	}
	var sum float64
	for _, v := range logits {
		sum += math.Exp(float64(v) - maxLogit)
	}
	logZ := maxLogit + math.Log(sum)

	out := make([]candidate, 0, k)
	for len(out) < k {
		best := -1
		bestVal := math.Inf(-1)
		for i, v := range logits {
			if f := float64(v); f > bestVal && !contains(out, int64(i)) {
				best, bestVal = i, f
			}
		}
		out = append(out, candidate{id: int64(best), score: bestVal - logZ})
	}
	return out
}

func contains(cands []candidate, id int64) bool {
	for _, c := range cands {
		if c.id == id {
			return true
		}
	}
	return false
}

// stepBeams advances one decode step. cands[i] holds ranked next-token
// proposals for active[i]. Hypotheses that emit eos move to finished; the
// remaining pool is ranked by cumulative score and trimmed to width.
func stepBeams(active []beam, cands [][]candidate, eos int64, width int) (next, finished []beam) {
	pool := make([]beam, 0, len(active)*(width+1))
	for i, b := range active {
		for _, c := range cands[i] {
			tokens := make([]int64, len(b.tokens)+1)
			copy(tokens, b.tokens)
			tokens[len(b.tokens)] = c.id
			pool = append(pool, beam{tokens: tokens, score: b.score + c.score})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })

	for _, b := range pool {
		if b.tokens[len(b.tokens)-1] == eos {
			if len(finished) < width {
				finished = append(finished, b)
			}
			continue
		}
		next = append(next, b)
		if len(next) == width {
			break
		}
	}
	return next, finished
}

// pickBest selects the hypothesis with the highest length-normalized score.
func pickBest(beams []beam) beam {
	best := beams[0]
	bestScore := normalizedScore(best)
	for _, b := range beams[1:] {
		if s := normalizedScore(b); s > bestScore {
			best, bestScore = b, s
		}
	}
	return best
}

// normalizedScore divides the cumulative log-probability by the number of
// generated tokens, excluding the decoder start token.
func normalizedScore(b beam) float64 {
	n := len(b.tokens) - 1
	if n < 1 {
		n = 1
	}
	return b.score / float64(n)
}
