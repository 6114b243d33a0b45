package forecast

import "sort"

// treeNode is one node of a binary regression tree. Leaves carry the mean
// target of the samples that reached them.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// fitTree grows a regression tree over the sample indices idx, greedily
// picking the (feature, threshold) split with the lowest resulting sum of
// squared errors. Growth stops at maxDepth, below minLeaf samples per side,
// or when no split improves on the current node.
func fitTree(features [][]float64, target []float64, idx []int, maxDepth, minLeaf int) *treeNode {
	mean := meanAt(target, idx)
	if maxDepth <= 0 || len(idx) < 2*minLeaf {
		return &treeNode{leaf: true, value: mean}
	}

	bestFeature, bestThreshold, bestSSE, found := bestSplit(features, target, idx, minLeaf)
	if !found || bestSSE >= sseAt(target, idx, mean) {
		return &treeNode{leaf: true, value: mean}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if features[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      fitTree(features, target, leftIdx, maxDepth-1, minLeaf),
		right:     fitTree(features, target, rightIdx, maxDepth-1, minLeaf),
	}
}

// bestSplit scans every feature with a single sorted pass, using running sums
// so each candidate threshold is evaluated in constant time.
func bestSplit(features [][]float64, target []float64, idx []int, minLeaf int) (feature int, threshold, sse float64, found bool) {
	nFeatures := len(features[idx[0]])
	ordered := append([]int(nil), idx...)

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += target[i]
		totalSq += target[i] * target[i]
	}
	n := float64(len(idx))

	best := treeSplit{sse: totalSq - totalSum*totalSum/n}
	for f := 0; f < nFeatures; f++ {
		sort.Slice(ordered, func(a, b int) bool {
			return features[ordered[a]][f] < features[ordered[b]][f]
		})

		var leftSum, leftSq float64
		for pos := 0; pos < len(ordered)-1; pos++ {
			i := ordered[pos]
			leftSum += target[i]
			leftSq += target[i] * target[i]

			// Cannot split between identical feature values.
			cur, next := features[i][f], features[ordered[pos+1]][f]
			if cur == next {
				continue
			}

			nLeft := float64(pos + 1)
			nRight := n - nLeft
			if int(nLeft) < minLeaf || int(nRight) < minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			candidate := (leftSq - leftSum*leftSum/nLeft) + (rightSq - rightSum*rightSum/nRight)
			if candidate < best.sse {
				best = treeSplit{
					feature:   f,
					threshold: (cur + next) / 2,
					sse:       candidate,
					found:     true,
				}
			}
		}
	}

	return best.feature, best.threshold, best.sse, best.found
}

type treeSplit struct {
	feature   int
	threshold float64
	sse       float64
	found     bool
}

func meanAt(values []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}

func sseAt(values []float64, idx []int, mean float64) float64 {
	var sse float64
	for _, i := range idx {
		d := values[i] - mean
		sse += d * d
	}
	return sse
}
