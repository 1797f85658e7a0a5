package models

import (
	"fmt"

	"github.com/Gobusters/ectolinq"
)

// Department is the owning department of a tool. The store holds it as department_type.
type Department string

const (
	DepartmentEngineering Department = "Engineering"
	DepartmentSales       Department = "Sales"
	DepartmentMarketing   Department = "Marketing"
	DepartmentHR          Department = "HR"
	DepartmentFinance     Department = "Finance"
	DepartmentOperations  Department = "Operations"
	DepartmentDesign      Department = "Design"
)

var Departments = []Department{
	DepartmentEngineering,
	DepartmentSales,
	DepartmentMarketing,
	DepartmentHR,
	DepartmentFinance,
	DepartmentOperations,
	DepartmentDesign,
}

func (d Department) Valid() bool {
	return ectolinq.Contains(Departments, d)
}

func ParseDepartment(value string) (Department, error) {
	d := Department(value)
	if !d.Valid() {
		return "", fmt.Errorf("invalid department %q", value)
	}
	return d, nil
}
