package session

// PatientOp enumerates the operations of a patient session.
type PatientOp int

const (
	PatientViewProfile PatientOp = iota + 1
	PatientEditProfile
	PatientListPrescriptions
	PatientListConsultations
	PatientListAgenda
)

var patientLabels = map[PatientOp]string{
	PatientViewProfile:       "View my profile",
	PatientEditProfile:       "Edit my profile",
	PatientListPrescriptions: "My prescriptions",
	PatientListConsultations: "My consultations",
	PatientListAgenda:        "My appointments",
}

func (o PatientOp) String() string { return patientLabels[o] }

// PatientMenu lists patient operations in menu order.
func PatientMenu() []PatientOp {
	return []PatientOp{
		PatientViewProfile,
		PatientEditProfile,
		PatientListPrescriptions,
		PatientListConsultations,
		PatientListAgenda,
	}
}

// DoctorOp enumerates the operations of a doctor session.
type DoctorOp int

const (
	DoctorViewProfile DoctorOp = iota + 1
	DoctorEditProfile
	DoctorListPatients
	DoctorViewPatient
	DoctorListSupplies
	DoctorCreateSupply
	DoctorUpdateStock
	DoctorDeleteSupply
	DoctorCreatePrescription
	DoctorViewPrescription
	DoctorListPrescriptions
	DoctorListPatientPrescriptions
	DoctorDeletePrescription
	DoctorLinkSupply
	DoctorListPrescriptionSupplies
	DoctorCreateConsultation
	DoctorListConsultations
	DoctorScheduleAppointment
	DoctorUpdateAppointmentStatus
	DoctorListAgenda
	DoctorListOwnAgenda
)

var doctorLabels = map[DoctorOp]string{
	DoctorViewProfile:              "View my profile",
	DoctorEditProfile:              "Edit my profile",
	DoctorListPatients:             "List patients",
	DoctorViewPatient:              "View patient",
	DoctorListSupplies:             "List supplies",
	DoctorCreateSupply:             "Create supply",
	DoctorUpdateStock:              "Update supply stock",
	DoctorDeleteSupply:             "Delete supply",
	DoctorCreatePrescription:       "Create prescription",
	DoctorViewPrescription:         "View prescription",
	DoctorListPrescriptions:        "List prescriptions",
	DoctorListPatientPrescriptions: "List prescriptions of a patient",
	DoctorDeletePrescription:       "Delete prescription",
	DoctorLinkSupply:               "Add supply to prescription",
	DoctorListPrescriptionSupplies: "List supplies of a prescription",
	DoctorCreateConsultation:       "Record consultation",
	DoctorListConsultations:        "List consultations",
	DoctorScheduleAppointment:      "Schedule appointment",
	DoctorUpdateAppointmentStatus:  "Update appointment status",
	DoctorListAgenda:               "Clinic agenda",
	DoctorListOwnAgenda:            "My agenda",
}

func (o DoctorOp) String() string { return doctorLabels[o] }

// DoctorMenu lists doctor operations in menu order.
func DoctorMenu() []DoctorOp {
	ops := make([]DoctorOp, 0, len(doctorLabels))
	for o := DoctorViewProfile; o <= DoctorListOwnAgenda; o++ {
		ops = append(ops, o)
	}
	return ops
}

// AdminOp enumerates the operations of an administrator session.
type AdminOp int

const (
	AdminViewProfile AdminOp = iota + 1
	AdminEditProfile
	AdminListAccounts
	AdminListPatients
	AdminListDoctors
	AdminViewAccount
	AdminCreateAccount
	AdminEditAccount
	AdminDeleteAccount
	AdminListSupplies
	AdminCreateSupply
	AdminUpdateStock
	AdminDeleteSupply
)

var adminLabels = map[AdminOp]string{
	AdminViewProfile:   "View my profile",
	AdminEditProfile:   "Edit my profile",
	AdminListAccounts:  "List all accounts",
	AdminListPatients:  "List patients",
	AdminListDoctors:   "List doctors",
	AdminViewAccount:   "View account",
	AdminCreateAccount: "Create account",
	AdminEditAccount:   "Edit account",
	AdminDeleteAccount: "Delete account",
	AdminListSupplies:  "List supplies",
	AdminCreateSupply:  "Create supply",
	AdminUpdateStock:   "Update supply stock",
	AdminDeleteSupply:  "Delete supply",
}

func (o AdminOp) String() string { return adminLabels[o] }

// AdminMenu lists administrator operations in menu order.
func AdminMenu() []AdminOp {
	ops := make([]AdminOp, 0, len(adminLabels))
	for o := AdminViewProfile; o <= AdminDeleteSupply; o++ {
		ops = append(ops, o)
	}
	return ops
}
