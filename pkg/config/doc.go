/*
Package config loads and validates the lotmig configuration.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  YAML   |   |  JSON   |   |   HCL   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Pick a parser by file extension
- Reject unknown keys
- Fill in defaults and resolve relative paths

Relative ledger and audit_log paths are resolved against the directory of the
config file, so a worker can be started from any working directory.

🔍 Example (.lotmig.yaml):

	title: QC JPEG migration
	source_root: /mnt/qc/raw
	dest_root: /mnt/qc/flat
	ledger: processed.log
	audit_log: record.log
	ignore_lots: ["_tmp*", ".*"]
	copy_workers: 1
	store:
	  driver: postgres
	  dsn: postgres://qc@db/qc?sslmode=disable
	  schema: vos
	  system_name: qc_jpeg
	  system_type: main

The same file in HCL:

	source_root = "/mnt/qc/raw"
	dest_root   = "/mnt/qc/flat"

	store {
	  driver = "postgres"
	  dsn    = env("LOTMIG_DSN")
	}
*/
package config
