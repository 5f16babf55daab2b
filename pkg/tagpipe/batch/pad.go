// Package batch pads id sequences and groups encoded sentences into
// minibatches, including the alternating two-corpus schedule used for
// multi-task training.
package batch

// Pad right-pads every sequence with padValue to the longest length in seqs.
// lengths[i] is the original length of seqs[i].
func Pad(seqs [][]int, padValue int) (padded [][]int, lengths []int) {
	maxLength := 0
	for _, s := range seqs {
		if len(s) > maxLength {
			maxLength = len(s)
		}
	}
	return PadTo(seqs, padValue, maxLength)
}

// PadTo truncates or right-pads every sequence to exactly maxLength.
// lengths[i] is min(len(seqs[i]), maxLength), the part of row i that holds
// real ids.
func PadTo(seqs [][]int, padValue, maxLength int) (padded [][]int, lengths []int) {
	if maxLength < 0 {
		maxLength = 0
	}
	padded = make([][]int, len(seqs))
	lengths = make([]int, len(seqs))
	for i, s := range seqs {
		row := make([]int, maxLength)
		n := copy(row, s)
		for j := n; j < maxLength; j++ {
			row[j] = padValue
		}
		padded[i] = row
		lengths[i] = n
	}
	return padded, lengths
}
