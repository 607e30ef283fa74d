package constants

// TmpCSVFile is the name pattern for temporary CSV files handed to DuckDB.
const TmpCSVFile = "collector_tmp_*.csv"
