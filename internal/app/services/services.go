package services

// Services defined in this package:
// - EnquiryService: the enquiry register (create, look up, list, status changes)
// - AdmissionService: the admission processor (submission, review, export)
// - DocumentService: printable PDFs for enquiries and admissions
// - AuthService: staff login and account seeding
