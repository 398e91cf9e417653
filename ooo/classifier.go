package ooo

// Overlap Classifier (C1). Given the timestamp extents of the existing
// on-disk data and of the OOO slice assigned to this partition, compute the
// (prefix, merge, suffix) block plan described in spec §4.1's classification
// table (cases A-H). All comparisons are strict unless the table says
// otherwise; case order matters; the first matching case wins.
//
// dataTs is the on-disk column's decoded timestamps (read via mmap upstream);
// oooEntries is the slice of the caller's sorted (timestamp,rowid) index
// covering exactly [srcOooLo, srcOooHi].
func classify(
	dataTsLo, dataTsHi int64, srcDataMax int64,
	oooTsLo, oooTsMax int64, srcOooLo, srcOooHi int64,
	dataTs []int64, oooEntries []byte,
) BlockPlan {
	switch {
	case oooTsLo > dataTsHi:
		// Case A: OOO slice entirely follows the data.
		return BlockPlan{
			PrefixType: BlockNone,
			MergeType:  BlockNone,
			SuffixType: BlockOOO, SuffixLo: srcOooLo, SuffixHi: srcOooHi,
		}

	case oooTsLo > dataTsLo && oooTsMax < dataTsHi:
		// Case B
		p := bsearch64(dataTs, oooTsLo, ScanDown)
		q := bsearch64(dataTs, oooTsMax-1, ScanDown) + 1

		plan := BlockPlan{
			PrefixType: BlockData, PrefixLo: 0, PrefixHi: p,
			MergeType:   BlockMerge,
			MergeDataLo: p + 1, MergeDataHi: q,
			MergeOOOLo: srcOooLo, MergeOOOHi: srcOooHi,
			SuffixType: BlockData, SuffixLo: q + 1, SuffixHi: srcDataMax - 1,
		}
		if plan.MergeDataLo >= plan.MergeDataHi {
			plan.MergeType = BlockOOO
			plan.MergeDataHi--
		}
		return plan

	case oooTsLo > dataTsLo && oooTsMax > dataTsHi:
		// Case C
		p := bsearch64(dataTs, oooTsLo, ScanDown)
		r := srcOooLo + bsearchIdx(oooEntries, dataTsHi, ScanUp)

		return BlockPlan{
			PrefixType: BlockData, PrefixLo: 0, PrefixHi: p,
			MergeType:   BlockMerge,
			MergeDataLo: p + 1, MergeDataHi: srcDataMax - 1,
			MergeOOOLo: srcOooLo, MergeOOOHi: r,
			SuffixType: BlockOOO, SuffixLo: r + 1, SuffixHi: srcOooHi,
		}

	case oooTsLo > dataTsLo && oooTsMax == dataTsHi:
		// Case D
		p := bsearch64(dataTs, oooTsLo, ScanDown)

		return BlockPlan{
			PrefixType: BlockData, PrefixLo: 0, PrefixHi: p,
			MergeType:   BlockMerge,
			MergeDataLo: p + 1, MergeDataHi: srcDataMax - 1,
			MergeOOOLo: srcOooLo, MergeOOOHi: srcOooHi,
			SuffixType: BlockNone,
		}

	case oooTsLo <= dataTsLo && dataTsLo < oooTsMax && oooTsMax < dataTsHi:
		// Case E
		pPrime := srcOooLo + bsearchIdx(oooEntries, dataTsLo, ScanDown)
		qPrime := bsearch64(dataTs, oooTsMax, ScanDown)

		return BlockPlan{
			PrefixType: BlockOOO, PrefixLo: srcOooLo, PrefixHi: pPrime,
			MergeType:   BlockMerge,
			MergeDataLo: 0, MergeDataHi: qPrime,
			MergeOOOLo: pPrime + 1, MergeOOOHi: srcOooHi,
			SuffixType: BlockData, SuffixLo: qPrime + 1, SuffixHi: srcDataMax - 1,
		}

	case oooTsLo <= dataTsLo && oooTsMax > dataTsHi:
		// Case F
		pPrime := srcOooLo + bsearchIdx(oooEntries, dataTsLo, ScanDown)
		rPrime := srcOooLo + bsearchIdx(oooEntries, dataTsHi-1, ScanDown) + 1

		plan := BlockPlan{
			PrefixType: BlockOOO, PrefixLo: srcOooLo, PrefixHi: pPrime,
			MergeType:   BlockMerge,
			MergeDataLo: 0, MergeDataHi: srcDataMax - 1,
			MergeOOOLo: pPrime + 1, MergeOOOHi: rPrime,
		}
		if plan.MergeOOOLo >= plan.MergeOOOHi {
			plan.MergeType = BlockData
			plan.MergeOOOHi--
		}

		// Degenerate-merge policy (see SPEC_FULL.md "Case F degenerate
		// suffix"): once the OOO side of the merge has collapsed below
		// srcOooLo, the entire OOO tail was absorbed and no suffix is
		// emitted, regardless of rPrime's relation to srcOooHi.
		if plan.MergeOOOHi < srcOooLo {
			plan.SuffixType = BlockNone
		} else if rPrime < srcOooHi {
			plan.SuffixType = BlockOOO
			plan.SuffixLo = rPrime + 1
			plan.SuffixHi = srcOooHi
		} else {
			plan.SuffixType = BlockNone
		}
		return plan

	case oooTsLo <= dataTsLo && oooTsMax == dataTsHi:
		// Case G
		pPrime := srcOooLo + bsearchIdx(oooEntries, dataTsLo, ScanDown)

		return BlockPlan{
			PrefixType: BlockOOO, PrefixLo: srcOooLo, PrefixHi: pPrime,
			MergeType:   BlockMerge,
			MergeDataLo: 0, MergeDataHi: srcDataMax - 1,
			MergeOOOLo: pPrime + 1, MergeOOOHi: srcOooHi,
			SuffixType: BlockNone,
		}

	default:
		// Case H: oooTsLo <= dataTsLo && oooTsMax <= dataTsLo — entire OOO
		// slice precedes the data. Equal endpoints are intentionally not
		// merged (see SPEC_FULL.md "Case H boundary").
		return BlockPlan{
			PrefixType: BlockOOO, PrefixLo: srcOooLo, PrefixHi: srcOooHi,
			MergeType:  BlockNone,
			SuffixType: BlockData, SuffixLo: 0, SuffixHi: srcDataMax - 1,
		}
	}
}
