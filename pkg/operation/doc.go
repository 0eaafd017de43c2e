/*
Package operation migrates lots: it copies and renames the images of one lot
(Transformer) and drives a confirmed batch of lots through the ledger (Batch).

	+-------------+        +-------------+        +-------------+
	|    Batch    | -----> | Transformer | -----> | destination |
	| (per run)   |        |  (per lot)  |        |    tree     |
	+------+------+        +-------------+        +-------------+
	       |
	       | on success
	+------+------+        +-------------+
	|   Ledger    |        |  Recorder   |
	|  (append)   |        |   (audit)   |
	+-------------+        +-------------+

🎯 Purpose:
- Flatten sourceRoot/<lot>/<group>/GoodDieImages/GoodDiceImages/*.jpeg into
  destRoot/<lot>/<group>/<prefix>-<lot>-<group>-<remainder>
- Append a lot to the ledger only after every one of its files is copied
- Keep going when a single lot fails

🔄 Migrate flow:
1. List die-groups (immediate subdirectories of the lot)
2. Locate the image directory of every group
3. Parse every image name
4. Remove temp files an interrupted earlier run left in each group
5. Copy through a temp file and rename, overwriting earlier output

Steps 1-3 finish before the first byte is written, so locate and name-parse
failures leave nothing behind. A crash during step 5 leaves whole files and
at most a few temp files; the lot is not in the ledger yet, so the next run
sweeps the temps, redoes the lot and overwrites.

🔍 Example:

	t := operation.NewTransformer(operation.TransformerOptions{CopyWorkers: 1})
	b, err := operation.NewBatch(operation.BatchOptions{
		Ledger:     l,
		Migrator:   t,
		Recorder:   audit,
		SourceRoot: "/mnt/src",
		DestRoot:   "/mnt/dst",
	})
	report, err := b.RunBatch(ctx, []string{"LOT7", "LOT8"}, true)
*/
package operation
